package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/razor303Jc/Job-search-sub002/internal/clock/system"
	"github.com/razor303Jc/Job-search-sub002/internal/dedup"
	"github.com/razor303Jc/Job-search-sub002/internal/extract"
	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
	"github.com/razor303Jc/Job-search-sub002/internal/normalize"
	"github.com/razor303Jc/Job-search-sub002/internal/pipeline"
	"github.com/razor303Jc/Job-search-sub002/internal/progress"
)

type scrapeFlags struct {
	keywords        []string
	location        string
	remote          bool
	remoteSet       bool
	salaryMin       float64
	salaryMax       float64
	employmentTypes []string
	exclude         []string
	datePosted      string
	maxResults      int
}

func newScrapeCmd() *cobra.Command {
	var flags scrapeFlags

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one ingestion pass over the configured sources",
		Long: `Fetches, extracts, normalizes, and deduplicates job postings from
every configured source, writes the unique set to storage, and prints the
run result as JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags.remoteSet = cmd.Flags().Changed("remote")
			return runScrape(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.keywords, "keywords", nil, "search keywords (required)")
	cmd.Flags().StringVar(&flags.location, "location", "", "location filter")
	cmd.Flags().BoolVar(&flags.remote, "remote", false, "only remote (or only on-site) postings")
	cmd.Flags().Float64Var(&flags.salaryMin, "salary-min", 0, "minimum salary")
	cmd.Flags().Float64Var(&flags.salaryMax, "salary-max", 0, "maximum salary")
	cmd.Flags().StringSliceVar(&flags.employmentTypes, "employment-type", nil, "employment types to keep")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "keywords that reject a posting")
	cmd.Flags().StringVar(&flags.datePosted, "date-posted", "", "posting age window: today, week, month, any")
	cmd.Flags().IntVar(&flags.maxResults, "max-results", 0, "result cap (default 50)")

	return cmd
}

func runScrape(parent context.Context, flags scrapeFlags) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, cfgFile)
	if err != nil {
		return err
	}
	defer rt.close(context.Background())

	fetcher, err := rt.fetcherFor()
	if err != nil {
		return err
	}
	snaps, err := rt.archiveStore(ctx)
	if err != nil {
		return err
	}
	fan, err := rt.progressFanout(ctx)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	clock := system.New()

	engineOpts := []extract.Option{
		extract.WithPageObserver(func(sourceID, pageURL string, page int) {
			fan.Emit(ctx, progress.Event{
				RunID: runID, TS: clock.Now(), Stage: progress.StagePageFetched,
				Source: sourceID, URL: pageURL, Page: page,
			})
		}),
	}
	if snaps != nil {
		engineOpts = append(engineOpts, extract.WithArchive(snaps, rt.cfg.Storage.Prefix))
	}
	engine := extract.New(fetcher, rt.logger.Named("extract"), engineOpts...)
	normalizer := normalize.New(clock, rt.logger.Named("normalize"))

	p := pipeline.New(pipeline.Config{
		FastDedupThreshold: rt.cfg.Dedup.FastThreshold,
		Dedup:              dedup.Config{UseDescription: rt.cfg.Dedup.UseDescription},
		RunID:              runID,
	}, engine, normalizer, fetcher, rt.store, fan, clock, rt.logger.Named("pipeline"))

	criteria := jobs.SearchCriteria{
		Keywords:        flags.keywords,
		Location:        flags.location,
		SalaryMin:       flags.salaryMin,
		SalaryMax:       flags.salaryMax,
		ExcludeKeywords: flags.exclude,
		DatePosted:      jobs.DateWindow(flags.datePosted),
		MaxResults:      flags.maxResults,
	}
	if flags.remoteSet {
		criteria.Remote = &flags.remote
	}
	for _, et := range flags.employmentTypes {
		criteria.EmploymentTypes = append(criteria.EmploymentTypes, jobs.EmploymentType(et))
	}

	start := time.Now()
	res, err := p.Run(ctx, rt.cfg.Sources, criteria)
	if err != nil {
		return err
	}
	rt.logger.Info("scrape finished",
		zap.Int("jobs", len(res.Jobs)),
		zap.Int("total_found", res.TotalFound),
		zap.Int("errors", len(res.Errors)),
		zap.Duration("elapsed", time.Since(start)),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
