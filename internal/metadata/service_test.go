package metadata

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/streamwise/streamwise/internal/metadata/tmdb"
)

// mockTMDB is a scriptable TMDBClient for tests.
type mockTMDB struct {
	searchResults map[string][]tmdb.MediaResult
	searchCalls   int
	providers     []string
	offers        []tmdb.ProviderOffer
	providerCalls int
	details       *tmdb.Details
	trending      []tmdb.MediaResult
}

func (m *mockTMDB) Name() string                 { return "tmdb" }
func (m *mockTMDB) IsConfigured() bool           { return true }
func (m *mockTMDB) Test(_ context.Context) error { return nil }

func (m *mockTMDB) GetImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/" + size + path
}

func (m *mockTMDB) SearchMulti(_ context.Context, query string) ([]tmdb.MediaResult, error) {
	m.searchCalls++
	return m.searchResults[query], nil
}

func (m *mockTMDB) GetDetails(_ context.Context, _ string, _ int) (*tmdb.Details, error) {
	return m.details, nil
}

func (m *mockTMDB) FlatrateOffers(_ context.Context, _ string, _ int, _ string) ([]tmdb.ProviderOffer, error) {
	m.providerCalls++
	return m.offers, nil
}

func (m *mockTMDB) FlatrateProviders(_ context.Context, _ string, _ int, _ string) ([]string, error) {
	m.providerCalls++
	return m.providers, nil
}

func (m *mockTMDB) GetSimilar(_ context.Context, mediaType string, _ int) ([]tmdb.MediaResult, error) {
	return nil, nil
}

func (m *mockTMDB) Discover(_ context.Context, mediaType string, _ tmdb.DiscoverParams) ([]tmdb.MediaResult, error) {
	return nil, nil
}

func (m *mockTMDB) Trending(_ context.Context, _ string) ([]tmdb.MediaResult, error) {
	return m.trending, nil
}

func newTestService(mock *mockTMDB) *Service {
	logger := zerolog.Nop()
	return NewServiceWithClient(mock, "US", &logger)
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "The Matrix", "The Matrix"},
		{"quoted", `"Dark"`, "Dark"},
		{"year suffix", "Dune (2021)", "Dune"},
		{"season suffix", "The Bear Season 3", "The Bear"},
		{"season suffix with colon", "Slow Horses: Season 4", "Slow Horses"},
		{"numeric title kept", "Blade Runner 2049", "Blade Runner 2049"},
		{"year and title number", "Blade Runner 2049 (2017)", "Blade Runner 2049"},
		{"whitespace", "  Andor  ", "Andor"},
		{"bare number stays", "1899", "1899"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanTitle(tt.input); got != tt.want {
				t.Errorf("CleanTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestService_Search_Caches(t *testing.T) {
	mock := &mockTMDB{
		searchResults: map[string][]tmdb.MediaResult{
			"severance": {{ID: 95396, MediaType: "tv", Name: "Severance", FirstAirDate: "2022-02-17"}},
		},
	}
	svc := newTestService(mock)

	for i := 0; i < 3; i++ {
		results, err := svc.Search(context.Background(), "severance")
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("Search() returned %d results, want 1", len(results))
		}
		if results[0].Year != 2022 {
			t.Errorf("results[0].Year = %d, want 2022", results[0].Year)
		}
	}

	if mock.searchCalls != 1 {
		t.Errorf("upstream search calls = %d, want 1", mock.searchCalls)
	}
}

func TestService_ResolveTitle_PreColonRetry(t *testing.T) {
	mock := &mockTMDB{
		searchResults: map[string][]tmdb.MediaResult{
			"Blade Runner": {{ID: 78, MediaType: "movie", Title: "Blade Runner"}},
		},
	}
	svc := newTestService(mock)

	info, err := svc.ResolveTitle(context.Background(), "Blade Runner: The Final Cut")
	if err != nil {
		t.Fatalf("ResolveTitle() error = %v", err)
	}
	if info.TmdbID != 78 {
		t.Errorf("info.TmdbID = %d, want 78", info.TmdbID)
	}
	if mock.searchCalls != 2 {
		t.Errorf("upstream search calls = %d, want 2 (full then pre-colon)", mock.searchCalls)
	}
}

func TestService_ResolveTitle_NoMatch(t *testing.T) {
	svc := newTestService(&mockTMDB{searchResults: map[string][]tmdb.MediaResult{}})

	_, err := svc.ResolveTitle(context.Background(), "Totally Unknown Title")
	if err == nil {
		t.Fatal("ResolveTitle() expected error for unknown title")
	}
}

func TestService_Availability_CachesEmpty(t *testing.T) {
	mock := &mockTMDB{providers: nil}
	svc := newTestService(mock)

	for i := 0; i < 2; i++ {
		names, err := svc.Availability(context.Background(), "movie", 603, "")
		if err != nil {
			t.Fatalf("Availability() error = %v", err)
		}
		if names == nil {
			t.Fatal("Availability() returned nil, want empty slice")
		}
		if len(names) != 0 {
			t.Errorf("Availability() = %v, want empty", names)
		}
	}

	if mock.providerCalls != 1 {
		t.Errorf("upstream provider calls = %d, want 1", mock.providerCalls)
	}
}

func TestService_Details(t *testing.T) {
	poster := "/poster.jpg"
	mock := &mockTMDB{
		details: &tmdb.Details{
			ID:           95396,
			Name:         "Severance",
			FirstAirDate: "2022-02-17",
			VoteAverage:  8.4,
			PosterPath:   &poster,
			Genres:       []tmdb.Genre{{ID: 18, Name: "Drama"}},
		},
	}
	svc := newTestService(mock)

	info, err := svc.Details(context.Background(), "tv", 95396)
	if err != nil {
		t.Fatalf("Details() error = %v", err)
	}
	if info.Title != "Severance" {
		t.Errorf("info.Title = %q, want %q", info.Title, "Severance")
	}
	if info.Year != 2022 {
		t.Errorf("info.Year = %d, want 2022", info.Year)
	}
	if len(info.GenreIDs) != 1 || info.GenreIDs[0] != 18 {
		t.Errorf("info.GenreIDs = %v, want [18]", info.GenreIDs)
	}
	if info.PosterURL == "" {
		t.Error("info.PosterURL should be populated from poster path")
	}
}
