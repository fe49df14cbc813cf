package services

import (
	"testing"

	"github.com/bookclubhq/bookclub-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func book(title string, genres []string, rating float64) models.Book {
	return models.Book{
		ID:      primitive.NewObjectID(),
		Title:   title,
		Genre:   genres,
		Ratings: models.Ratings{Average: rating},
	}
}

func TestBuildGenreWeights_Empty(t *testing.T) {
	t.Parallel()

	weights := BuildGenreWeights(nil, nil)
	assert.Empty(t, weights)
}

func TestBuildGenreWeights_SingleBook(t *testing.T) {
	t.Parallel()

	b := book("Dune", []string{"Sci-Fi"}, 4)
	history := []models.ReadingHistoryEntry{{Book: b.ID, ReadCount: 3}}
	books := map[primitive.ObjectID]models.Book{b.ID: b}

	weights := BuildGenreWeights(history, books)
	require.Len(t, weights, 1)
	assert.Equal(t, 12.0, weights["Sci-Fi"]) // 4 * 3
}

func TestBuildGenreWeights_MultiGenreContributesToEach(t *testing.T) {
	t.Parallel()

	b := book("Neuromancer", []string{"Sci-Fi", "Thriller"}, 5)
	history := []models.ReadingHistoryEntry{{Book: b.ID, ReadCount: 2}}
	books := map[primitive.ObjectID]models.Book{b.ID: b}

	weights := BuildGenreWeights(history, books)
	assert.Equal(t, 10.0, weights["Sci-Fi"])
	assert.Equal(t, 10.0, weights["Thriller"])
}

func TestBuildGenreWeights_ZeroReadCountKeepsGenreKey(t *testing.T) {
	t.Parallel()

	b := book("Unopened", []string{"Fantasy"}, 5)
	history := []models.ReadingHistoryEntry{{Book: b.ID, ReadCount: 0}}
	books := map[primitive.ObjectID]models.Book{b.ID: b}

	// An unread book adds no weight but its genres stay in the table, so
	// the candidate fetch still covers them.
	weights := BuildGenreWeights(history, books)
	require.Len(t, weights, 1)
	assert.Equal(t, 0.0, weights["Fantasy"])
}

func TestBuildGenreWeights_AccumulatesAcrossEntries(t *testing.T) {
	t.Parallel()

	a := book("A", []string{"Mystery"}, 4)
	b := book("B", []string{"Mystery"}, 3)
	history := []models.ReadingHistoryEntry{
		{Book: a.ID, ReadCount: 1},
		{Book: b.ID, ReadCount: 2},
	}
	books := map[primitive.ObjectID]models.Book{a.ID: a, b.ID: b}

	weights := BuildGenreWeights(history, books)
	assert.Equal(t, 10.0, weights["Mystery"]) // 4*1 + 3*2
}

func TestRankByGenreWeights_GenreMatchBeatsHigherRawRating(t *testing.T) {
	t.Parallel()

	// Reader engages with Sci-Fi; a Sci-Fi candidate must outrank a
	// non-Sci-Fi candidate of equal or higher raw rating.
	weights := map[string]float64{"Sci-Fi": 12}

	romance := book("High-Rated Romance", []string{"Romance"}, 5)
	scifi := book("Decent Sci-Fi", []string{"Sci-Fi"}, 4)

	ranked := RankByGenreWeights([]models.Book{romance, scifi}, weights)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Decent Sci-Fi", ranked[0].Title)
	assert.Equal(t, "High-Rated Romance", ranked[1].Title)
}

func TestRankByGenreWeights_TiesKeepRatingOrder(t *testing.T) {
	t.Parallel()

	// Both candidates score zero against the weight table, so they must
	// keep the order of the incoming rating-descending fetch.
	weights := map[string]float64{"Sci-Fi": 8}

	first := book("First", []string{"Romance"}, 5)
	second := book("Second", []string{"History"}, 4)

	ranked := RankByGenreWeights([]models.Book{first, second}, weights)
	require.Len(t, ranked, 2)
	assert.Equal(t, "First", ranked[0].Title)
	assert.Equal(t, "Second", ranked[1].Title)
}

func TestRankByGenreWeights_ScoreIsRatingTimesWeightSum(t *testing.T) {
	t.Parallel()

	weights := map[string]float64{"Sci-Fi": 2, "Thriller": 3}

	// both genres: 4 * (2+3) = 20
	both := book("Both", []string{"Sci-Fi", "Thriller"}, 4)
	// one genre but higher rating: 5 * 3 = 15
	one := book("One", []string{"Thriller"}, 5)

	ranked := RankByGenreWeights([]models.Book{one, both}, weights)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Both", ranked[0].Title)
}

func TestRankByGenreWeights_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	weights := map[string]float64{"Sci-Fi": 5}
	a := book("A", []string{"Romance"}, 5)
	b := book("B", []string{"Sci-Fi"}, 3)
	input := []models.Book{a, b}

	_ = RankByGenreWeights(input, weights)
	assert.Equal(t, "A", input[0].Title)
	assert.Equal(t, "B", input[1].Title)
}
