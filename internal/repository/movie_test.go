package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/moviepulse/internal/model"
)

func ptr(f float64) *float64 { return &f }

func TestMovieUpsertKeepsIdentityAndSource(t *testing.T) {
	repos := setupRepos(t)

	first, err := repos.Movie.Upsert(model.UpstreamMovie{
		TmdbID: 550, Title: "Fight Club", Popularity: ptr(61.4),
	}, model.SourceSearch)
	require.NoError(t, err)

	// 同一 tmdb_id 再次 upsert：刷新基础字段，不新增行，不改来源
	second, err := repos.Movie.Upsert(model.UpstreamMovie{
		TmdbID: 550, Title: "Fight Club (1999)", Popularity: ptr(70.0),
	}, model.SourceTrending)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Fight Club (1999)", second.Title)
	assert.Equal(t, model.SourceSearch, second.Source)

	var count int64
	repos.DB.Model(&model.Movie{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMovieUpsertNilPopularityKeepsKnownValue(t *testing.T) {
	repos := setupRepos(t)

	_, err := repos.Movie.Upsert(model.UpstreamMovie{
		TmdbID: 550, Title: "Fight Club", Popularity: ptr(61.4),
	}, model.SourceSearch)
	require.NoError(t, err)

	// 上游这次没给热度：已知热度不能被 NULL 覆盖
	movie, err := repos.Movie.Upsert(model.UpstreamMovie{
		TmdbID: 550, Title: "Fight Club",
	}, model.SourceSearch)
	require.NoError(t, err)
	require.NotNil(t, movie.Popularity)
	assert.Equal(t, 61.4, *movie.Popularity)

	// 带新热度时照常刷新
	movie, err = repos.Movie.Upsert(model.UpstreamMovie{
		TmdbID: 550, Title: "Fight Club", Popularity: ptr(70.0),
	}, model.SourceSearch)
	require.NoError(t, err)
	require.NotNil(t, movie.Popularity)
	assert.Equal(t, 70.0, *movie.Popularity)
}

func TestMovieSearchByTitleCaseInsensitive(t *testing.T) {
	repos := setupRepos(t)

	seed := []struct {
		tmdbID int
		title  string
		pop    *float64
	}{
		{550, "Fight Club", ptr(61.4)},
		{9012, "They Fight", ptr(90.0)},
		{603, "The Matrix", ptr(80.0)},
		{777, "Fighter", nil},
	}
	for _, m := range seed {
		_, err := repos.Movie.Upsert(model.UpstreamMovie{TmdbID: m.tmdbID, Title: m.title, Popularity: m.pop}, model.SourceSearch)
		require.NoError(t, err)
	}

	movies, err := repos.Movie.SearchByTitle("FIGHT", 20)
	require.NoError(t, err)
	require.Len(t, movies, 3)

	// 热度倒序，无热度的排最后
	assert.Equal(t, "They Fight", movies[0].Title)
	assert.Equal(t, "Fight Club", movies[1].Title)
	assert.Equal(t, "Fighter", movies[2].Title)
}

func TestReplaceGenresDropsUnknownIDs(t *testing.T) {
	repos := setupRepos(t)

	require.NoError(t, repos.Genre.UpsertAll([]model.UpstreamGenre{
		{TmdbID: 28, Name: "动作"},
		{TmdbID: 878, Name: "科幻"},
	}))

	movie, err := repos.Movie.Upsert(model.UpstreamMovie{TmdbID: 603, Title: "The Matrix"}, model.SourceSearch)
	require.NoError(t, err)

	// 99999 本地不存在：直接丢弃，不报错也不创建
	linked, err := repos.Movie.ReplaceGenres(movie, []int{28, 878, 99999})
	require.NoError(t, err)
	assert.Equal(t, 2, linked)

	found, err := repos.Movie.FindByID(movie.ID)
	require.NoError(t, err)
	assert.Len(t, found.Genres, 2)
}

func TestReplaceGenresIsFullReplace(t *testing.T) {
	repos := setupRepos(t)

	require.NoError(t, repos.Genre.UpsertAll([]model.UpstreamGenre{
		{TmdbID: 28, Name: "动作"},
		{TmdbID: 18, Name: "剧情"},
	}))

	movie, err := repos.Movie.Upsert(model.UpstreamMovie{TmdbID: 550, Title: "Fight Club"}, model.SourceSearch)
	require.NoError(t, err)

	_, err = repos.Movie.ReplaceGenres(movie, []int{28})
	require.NoError(t, err)
	_, err = repos.Movie.ReplaceGenres(movie, []int{18})
	require.NoError(t, err)

	found, err := repos.Movie.FindByID(movie.ID)
	require.NoError(t, err)
	require.Len(t, found.Genres, 1)
	assert.Equal(t, 18, found.Genres[0].TmdbID)
}

func TestListByGenreFallback(t *testing.T) {
	repos := setupRepos(t)

	require.NoError(t, repos.Genre.UpsertAll([]model.UpstreamGenre{{TmdbID: 28, Name: "动作"}}))
	genre, err := repos.Genre.FindByTmdbID(28)
	require.NoError(t, err)

	action, err := repos.Movie.Upsert(model.UpstreamMovie{TmdbID: 603, Title: "The Matrix", Popularity: ptr(80)}, model.SourceSearch)
	require.NoError(t, err)
	_, err = repos.Movie.ReplaceGenres(action, []int{28})
	require.NoError(t, err)

	_, err = repos.Movie.Upsert(model.UpstreamMovie{TmdbID: 550, Title: "Fight Club", Popularity: ptr(61.4)}, model.SourceSearch)
	require.NoError(t, err)

	movies, err := repos.Movie.ListByGenre(genre.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, 603, movies[0].TmdbID)
}

func TestReplaceCastRewritesFully(t *testing.T) {
	repos := setupRepos(t)

	movie, err := repos.Movie.Upsert(model.UpstreamMovie{TmdbID: 550, Title: "Fight Club"}, model.SourceSearch)
	require.NoError(t, err)

	first := []model.UpstreamCast{
		{PersonTmdbID: 819, Name: "Edward Norton", Character: "The Narrator", Order: 0},
		{PersonTmdbID: 287, Name: "Brad Pitt", Character: "Tyler Durden", Order: 1},
	}
	require.NoError(t, repos.Person.ReplaceCast(movie.ID, first))

	// 第二次同步只剩一个人：旧行必须全部消失
	second := []model.UpstreamCast{
		{PersonTmdbID: 287, Name: "Brad Pitt", Character: "Tyler", Order: 0},
	}
	require.NoError(t, repos.Person.ReplaceCast(movie.ID, second))

	cast, err := repos.Person.ListCast(movie.ID)
	require.NoError(t, err)
	require.Len(t, cast, 1)
	assert.Equal(t, "Tyler", cast[0].CharacterName)
	require.NotNil(t, cast[0].Person)
	assert.Equal(t, 287, cast[0].Person.TmdbID)

	// 人物行是 upsert 的，不随演职表删除
	var persons int64
	repos.DB.Model(&model.Person{}).Count(&persons)
	assert.Equal(t, int64(2), persons)
}
