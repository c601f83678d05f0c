package tmdb

import "strings"

const (
	imageBaseURL = "https://image.tmdb.org/t/p/w500"

	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SearchResult is one row of /search/multi or /{type}/{id}/recommendations.
// Movies fill Title/ReleaseDate, shows fill Name/FirstAirDate.
type SearchResult struct {
	ID           int64   `json:"id"`
	MediaType    string  `json:"media_type"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int   `json:"genre_ids"`
}

// DisplayTitle returns Title for movies and Name for shows.
func (r SearchResult) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

type SearchPage struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []SearchResult `json:"results"`
}

type MovieDetails struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Runtime     int     `json:"runtime"`
	VoteAverage float64 `json:"vote_average"`
	Genres      []Genre `json:"genres"`
}

type SeasonSummary struct {
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	Name         string `json:"name"`
	AirDate      string `json:"air_date"`
}

type TVDetails struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Overview         string          `json:"overview"`
	PosterPath       string          `json:"poster_path"`
	FirstAirDate     string          `json:"first_air_date"`
	LastAirDate      string          `json:"last_air_date"`
	Status           string          `json:"status"`
	NumberOfSeasons  int             `json:"number_of_seasons"`
	NumberOfEpisodes int             `json:"number_of_episodes"`
	EpisodeRunTime   []int           `json:"episode_run_time"`
	VoteAverage      float64         `json:"vote_average"`
	Genres           []Genre         `json:"genres"`
	Seasons          []SeasonSummary `json:"seasons"`
}

// AverageRuntime is the first advertised episode runtime, 0 when unknown.
func (d TVDetails) AverageRuntime() int {
	if len(d.EpisodeRunTime) == 0 {
		return 0
	}
	return d.EpisodeRunTime[0]
}

// RegularSeasons drops season 0 ("Specials").
func (d TVDetails) RegularSeasons() []SeasonSummary {
	out := make([]SeasonSummary, 0, len(d.Seasons))
	for _, s := range d.Seasons {
		if s.SeasonNumber > 0 {
			out = append(out, s)
		}
	}
	return out
}

type Episode struct {
	ID            int64   `json:"id"`
	SeasonNumber  int     `json:"season_number"`
	EpisodeNumber int     `json:"episode_number"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	AirDate       string  `json:"air_date"`
	Runtime       int     `json:"runtime"`
	VoteAverage   float64 `json:"vote_average"`
	StillPath     string  `json:"still_path"`
}

type SeasonDetails struct {
	ID           int64     `json:"id"`
	SeasonNumber int       `json:"season_number"`
	Name         string    `json:"name"`
	AirDate      string    `json:"air_date"`
	Episodes     []Episode `json:"episodes"`
}

type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

type CrewMember struct {
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

type Credits struct {
	ID   int64        `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Director returns the first crew member credited as Director.
func (c Credits) Director() string {
	for _, m := range c.Crew {
		if m.Job == "Director" {
			return m.Name
		}
	}
	return ""
}

// TopCast joins the first n billed cast names with commas.
func (c Credits) TopCast(n int) string {
	names := make([]string, 0, n)
	for _, m := range c.Cast {
		if len(names) == n {
			break
		}
		names = append(names, m.Name)
	}
	return strings.Join(names, ",")
}

// GenreIDs flattens a genre list to its ids.
func GenreIDs(genres []Genre) []int {
	ids := make([]int, len(genres))
	for i, g := range genres {
		ids[i] = g.ID
	}
	return ids
}

// PosterURL expands a poster path to a w500 image URL.
func PosterURL(path string) string {
	if path == "" {
		return ""
	}
	return imageBaseURL + path
}
