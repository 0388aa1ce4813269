package tmdb

// SearchMultiResponse is the response from TMDB multi search.
type SearchMultiResponse struct {
	Page         int           `json:"page"`
	Results      []MediaResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// MediaResult is a movie or TV entry from TMDB search, discover and
// trending feeds. Movie rows use Title/ReleaseDate, TV rows use
// Name/FirstAirDate; MediaType is only populated by multi search and
// trending.
type MediaResult struct {
	ID           int     `json:"id"`
	MediaType    string  `json:"media_type"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	Adult        bool    `json:"adult"`
	GenreIDs     []int   `json:"genre_ids"`
}

// DisplayTitle returns the title field appropriate for the media type.
func (m MediaResult) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

// Details is the detailed movie or TV info from TMDB.
type Details struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	Status           string  `json:"status"`
	Tagline          string  `json:"tagline"`
	Runtime          int     `json:"runtime"`
	OriginalLanguage string  `json:"original_language"`
	Genres           []Genre `json:"genres"`
	NumberOfSeasons  int     `json:"number_of_seasons"`
	NumberOfEpisodes int     `json:"number_of_episodes"`
}

// Genre represents a genre from TMDB.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// WatchProvidersResponse is the response from the watch/providers
// endpoint, keyed by ISO 3166-1 region code.
type WatchProvidersResponse struct {
	ID      int                        `json:"id"`
	Results map[string]RegionProviders `json:"results"`
}

// RegionProviders holds the provider offers for a single region.
type RegionProviders struct {
	Link     string          `json:"link"`
	Flatrate []ProviderOffer `json:"flatrate"`
	Rent     []ProviderOffer `json:"rent"`
	Buy      []ProviderOffer `json:"buy"`
}

// ProviderOffer is a single streaming provider entry.
type ProviderOffer struct {
	ProviderID      int    `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	LogoPath        string `json:"logo_path"`
	DisplayPriority int    `json:"display_priority"`
}

// PagedResponse is the generic paged list response used by similar,
// discover and trending endpoints.
type PagedResponse struct {
	Page         int           `json:"page"`
	Results      []MediaResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// ErrorResponse is the TMDB API error body.
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}
