// Package pipeline scrapes the country, region and subdivision dataset and
// enriches it with Wikipedia, Wikidata and GeoNames data.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/countries-cli/internal/fetcher"
	"github.com/sells-group/countries-cli/internal/model"
	"github.com/sells-group/countries-cli/internal/overrides"
	"github.com/sells-group/countries-cli/internal/progress"
	"github.com/sells-group/countries-cli/internal/source"
	"github.com/sells-group/countries-cli/internal/throttle"
)

var (
	// ErrNoGeoNamesMapping is recorded when an entity has a Wikidata item but
	// neither an override nor a GeoNames claim.
	ErrNoGeoNamesMapping = eris.New("pipeline: no GeoNames mapping")
	// ErrNoEntity is recorded when a Wikipedia slug links to no Wikidata item.
	ErrNoEntity = eris.New("pipeline: no Wikidata entity")
	// ErrNoPage is recorded when a scraped link resolves to no Wikipedia page.
	ErrNoPage = eris.New("pipeline: no Wikipedia page")
)

// Options configure a Scraper.
type Options struct {
	Endpoints source.Endpoints
	Overrides *overrides.Set

	// Schedule paces the subdivision, slug and Wikidata stages.
	Schedule throttle.Schedule
	// GeoNamesSchedule paces the GeoNames stage, which has an hourly quota.
	GeoNamesSchedule throttle.Schedule

	// Strict fails the run on the first missing GeoNames mapping instead of
	// recording it in the report.
	Strict bool

	Progress progress.Factory
}

// Scraper builds the dataset. A Scraper constructed with NewWithData, or one
// that has completed a run, returns its cached dataset without fetching.
type Scraper struct {
	fetcher fetcher.Fetcher
	opts    Options

	mu     sync.Mutex
	data   *model.Dataset
	report *Report
}

// New returns a Scraper that fetches through f.
func New(f fetcher.Fetcher, opts Options) *Scraper {
	if opts.Overrides == nil {
		opts.Overrides = overrides.Default()
	}
	if opts.Progress == nil {
		opts.Progress = progress.Noop
	}
	return &Scraper{fetcher: f, opts: opts}
}

// NewWithData returns a Scraper that serves ds without fetching.
func NewWithData(ds *model.Dataset) *Scraper {
	return &Scraper{data: ds, report: &Report{}, opts: Options{Progress: progress.Noop}}
}

// Report returns the misses of the last run, or nil before any run.
func (s *Scraper) Report() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// GetData returns the dataset, scraping it on first use. On failure no
// partial dataset is returned or cached.
func (s *Scraper) GetData(ctx context.Context) (*model.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.data.Empty() {
		return s.data, nil
	}

	report := &Report{RunID: uuid.New().String()}
	ds, err := s.run(ctx, report)
	if err != nil {
		return nil, err
	}
	s.data, s.report = ds, report
	return ds, nil
}

func (s *Scraper) run(ctx context.Context, report *Report) (*model.Dataset, error) {
	log := zap.L().With(zap.String("run_id", report.RunID))
	log.Info("pipeline: starting scrape")
	start := time.Now()

	var (
		countries []*model.Country
		ds        *model.Dataset
	)
	stages := []struct {
		name string
		fn   func() error
	}{
		{"countries", func() (err error) {
			countries, err = s.countries(ctx)
			return err
		}},
		{"subdivisions", func() error {
			return s.subdivisions(ctx, countries)
		}},
		{"regions", func() (err error) {
			ds, err = s.regions(ctx, countries)
			return err
		}},
		{"wikipedia", func() error {
			return s.enrich(ctx, "Wiki IDs:", ds, s.opts.Schedule, s.resolveSlug, report)
		}},
		{"wikidata", func() error {
			return s.enrich(ctx, "GeoNames IDs:", ds, s.opts.Schedule, s.resolveWikidata, report)
		}},
		{"geonames", func() error {
			return s.enrich(ctx, "GeoNames Data:", ds, s.opts.GeoNamesSchedule, s.resolveGeoNames, report)
		}},
	}

	for _, st := range stages {
		stageStart := time.Now()
		if err := st.fn(); err != nil {
			log.Error("pipeline: stage failed",
				zap.String("stage", st.name),
				zap.Int64("duration_ms", time.Since(stageStart).Milliseconds()),
				zap.Error(err),
			)
			return nil, err
		}
		log.Info("pipeline: stage complete",
			zap.String("stage", st.name),
			zap.Int64("duration_ms", time.Since(stageStart).Milliseconds()),
		)
	}

	log.Info("pipeline: scrape complete",
		zap.Int("continents", len(ds.Continents)),
		zap.Int("regions", len(ds.Regions)),
		zap.Int("countries", len(ds.Countries)),
		zap.Int("subdivisions", len(ds.Subdivisions)),
		zap.Int("misses", report.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ds, nil
}

func (s *Scraper) countries(ctx context.Context) ([]*model.Country, error) {
	body, err := s.fetcher.Download(ctx, s.opts.Endpoints.CountryListURL())
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch country list")
	}
	defer body.Close() //nolint:errcheck

	countries, err := source.ParseCountryList(body, s.opts.Endpoints)
	if err != nil {
		return nil, err
	}
	return countries, nil
}

// subdivisions fetches every country's ISO 3166-2 page. The parser links
// each subdivision to its country.
func (s *Scraper) subdivisions(ctx context.Context, countries []*model.Country) error {
	parser := &source.SubdivisionParser{Endpoints: s.opts.Endpoints, Overrides: s.opts.Overrides}
	bar := s.opts.Progress("Subdivisions:", len(countries))
	defer bar.Finish()

	return throttle.Run(ctx, countries, s.opts.Schedule, func(ctx context.Context, _ int, c *model.Country) error {
		defer bar.Increment()
		body, err := s.fetcher.Download(ctx, s.opts.Endpoints.SubdivisionPageURL(c.ISOTwoLetterCode))
		if err != nil {
			return eris.Wrapf(err, "pipeline: fetch subdivisions of %s", c.ISOTwoLetterCode)
		}
		defer body.Close() //nolint:errcheck

		_, err = parser.Parse(body, c)
		return err
	})
}

// regions reads the UNSD table and assembles the dataset. Subdivisions are
// listed country by country in country-list order.
func (s *Scraper) regions(ctx context.Context, countries []*model.Country) (*model.Dataset, error) {
	page, err := fetcher.FetchBytes(ctx, s.fetcher, s.opts.Endpoints.UNSD)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch UNSD regions")
	}

	parser := &source.RegionParser{Endpoints: s.opts.Endpoints, Pages: s.opts.Overrides.Pages}
	continents, regions, err := parser.Parse(page, countries)
	if err != nil {
		return nil, err
	}

	ds := &model.Dataset{Continents: continents, Regions: regions, Countries: countries}
	for _, c := range countries {
		ds.Subdivisions = append(ds.Subdivisions, c.Subdivisions...)
	}
	return ds, nil
}
