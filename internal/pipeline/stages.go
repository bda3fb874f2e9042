package pipeline

import (
	"context"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/countries-cli/internal/fetcher"
	"github.com/sells-group/countries-cli/internal/model"
	"github.com/sells-group/countries-cli/internal/source"
	"github.com/sells-group/countries-cli/internal/throttle"
)

type resolver func(ctx context.Context, e model.Entity, report *Report) error

// enrich runs fn over the four collections concurrently. Each collection is
// paced by its own schedule. The first error fails the stage.
func (s *Scraper) enrich(ctx context.Context, prefix string, ds *model.Dataset, sched throttle.Schedule, fn resolver, report *Report) error {
	bar := s.opts.Progress(prefix, ds.Len())
	defer bar.Finish()

	zap.L().Info("pipeline: stage scheduled",
		zap.String("stage", prefix),
		zap.Int("entities", ds.Len()),
		zap.Duration("expected", expectedDuration(ds, sched)),
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, coll := range ds.Collections() {
		g.Go(func() error {
			return throttle.Run(gctx, coll, sched, func(ctx context.Context, _ int, e model.Entity) error {
				defer bar.Increment()
				return fn(ctx, e, report)
			})
		})
	}
	return g.Wait()
}

// expectedDuration is the start offset of the last task of the largest
// collection. The collections run side by side, each on its own schedule.
func expectedDuration(ds *model.Dataset, sched throttle.Schedule) time.Duration {
	var longest int
	for _, coll := range ds.Collections() {
		longest = max(longest, len(coll))
	}
	return sched.Total(longest)
}

// miss records a soft failure. In strict mode a missing GeoNames mapping is
// returned instead.
func (s *Scraper) miss(e model.Entity, report *Report, cause error) error {
	d := e.Describe()
	if s.opts.Strict && eris.Is(cause, ErrNoGeoNamesMapping) {
		return eris.Wrapf(cause, "%s %s (%s)", e.Kind(), e.Key(), d.WikidataID)
	}
	zap.L().Debug("pipeline: unresolved entity",
		zap.String("kind", string(e.Kind())),
		zap.String("key", e.Key()),
		zap.String("wikidata_id", d.WikidataID),
		zap.Error(cause),
	)
	report.add(Miss{Kind: e.Kind(), Key: e.Key(), WikidataID: d.WikidataID, Reason: cause.Error()})
	return nil
}

// resolveSlug follows the scraped page link through redirects to the
// canonical Wikipedia slug.
func (s *Scraper) resolveSlug(ctx context.Context, e model.Entity, report *Report) error {
	d := e.Describe()
	if d.SourceURL == "" {
		return nil
	}
	title, err := source.TitleFromURL(d.SourceURL)
	if err != nil {
		return s.miss(e, report, eris.Wrapf(ErrNoPage, "source url %q: %v", d.SourceURL, err))
	}
	resp, err := fetcher.FetchJSON[source.PageInfoResponse](ctx, s.fetcher, s.opts.Endpoints.PageInfoURL(title))
	if err != nil {
		return eris.Wrapf(err, "pipeline: page info for %s %s", e.Kind(), e.Key())
	}
	slug, ok := resp.CanonicalSlug()
	if !ok {
		return s.miss(e, report, eris.Wrapf(ErrNoPage, "title %q", title))
	}
	d.WikipediaSlug = slug
	return nil
}

// resolveWikidata looks up the Wikidata item of the slug, records its
// labels and determines the GeoNames id. The override table is consulted
// before the item's claims.
func (s *Scraper) resolveWikidata(ctx context.Context, e model.Entity, report *Report) error {
	d := e.Describe()
	if d.WikipediaSlug == "" {
		return nil
	}
	title, err := url.PathUnescape(d.WikipediaSlug)
	if err != nil {
		title = d.WikipediaSlug
	}
	resp, err := fetcher.FetchJSON[source.EntitiesResponse](ctx, s.fetcher, s.opts.Endpoints.EntitiesURL(title))
	if err != nil {
		return eris.Wrapf(err, "pipeline: wikidata entity for %s %s", e.Kind(), e.Key())
	}
	id, entity, ok := resp.First()
	if !ok {
		return s.miss(e, report, eris.Wrapf(ErrNoEntity, "slug %q", d.WikipediaSlug))
	}
	d.WikidataID = id

	if o, hit := s.opts.Overrides.GeoNames.Lookup(id); hit {
		if !o.Suppressed {
			d.GeoNamesID = o.Value
		}
	} else if geo, ok := entity.StringClaim(source.GeoNamesIDProperty); ok {
		d.GeoNamesID = geo
	} else if err := s.miss(e, report, ErrNoGeoNamesMapping); err != nil {
		return err
	}

	entity.ApplyLabels(&d.Names)
	return nil
}

// resolveGeoNames reads the name, coordinates and localized names of the
// GeoNames feature.
func (s *Scraper) resolveGeoNames(ctx context.Context, e model.Entity, _ *Report) error {
	d := e.Describe()
	if d.GeoNamesID == "" {
		return nil
	}
	body, err := s.fetcher.Download(ctx, s.opts.Endpoints.GeoNamesURL(d.GeoNamesID))
	if err != nil {
		return eris.Wrapf(err, "pipeline: geonames feature %s for %s %s", d.GeoNamesID, e.Kind(), e.Key())
	}
	defer body.Close() //nolint:errcheck

	feature, err := source.ParseGeoNamesRDF(body)
	if err != nil {
		return eris.Wrapf(err, "pipeline: geonames feature %s", d.GeoNamesID)
	}
	feature.Apply(d)
	return nil
}
