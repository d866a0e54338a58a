// Command tracker runs the update cycle against a catalog source from the
// command line, printing the objects visible from an observer location.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/signalsfoundry/orbit-tracker/catalog"
	"github.com/signalsfoundry/orbit-tracker/core"
	"github.com/signalsfoundry/orbit-tracker/internal/config"
	"github.com/signalsfoundry/orbit-tracker/internal/logging"
	"github.com/signalsfoundry/orbit-tracker/model"
	"github.com/signalsfoundry/orbit-tracker/timectrl"
)

func main() {
	sources := flag.String("sources", config.DefaultSource, "comma-separated catalog source URLs")
	lat := flag.Float64("lat", 0, "observer latitude (degrees)")
	lng := flag.Float64("lng", 0, "observer longitude (degrees)")
	alt := flag.Float64("alt", 0, "observer altitude (metres)")
	place := flag.String("place", "", "observer display name")
	duration := flag.Duration("duration", 60*time.Second, "total run duration")
	tick := flag.Duration("tick", 1*time.Second, "tick interval")
	accelerated := flag.Bool("accelerated", false, "run ticks back to back instead of real-time")
	onlyVisible := flag.Bool("only-visible", true, "filter to objects above the horizon")
	search := flag.String("search", "", "search text (name or catalog number)")
	cacheDir := flag.String("cache-dir", "", "catalog cache directory (empty disables persistence)")

	flag.Parse()
	_ = godotenv.Load()

	log := logging.NewFromEnv()
	ctx := context.Background()

	var disk *catalog.DiskCache
	if *cacheDir != "" {
		var err error
		disk, err = catalog.NewDiskCache(*cacheDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cache dir unusable, continuing without persistence: %v\n", err)
		}
	}

	srcList := splitSources(*sources)
	store := catalog.NewStore(catalog.StoreOptions{
		Ingestor: catalog.NewIngestor(nil, nil, log, nil),
		Disk:     disk,
		Log:      log,
	}, srcList...)

	catalogs := make([]catalog.Cached, 0, len(srcList))
	for _, src := range srcList {
		catalogs = append(catalogs, store.Get(ctx, src))
	}
	merged := catalog.Merge(catalogs...)
	fmt.Printf("Loaded catalog: %d records from %s\n", len(merged.Records), merged.Source)

	tracker := core.NewTracker(log, core.NewClassifier(0))
	tracker.SetCatalog(merged)
	tracker.SetObserver(model.ObserverLocation{Lat: *lat, Lng: *lng, Alt: *alt, Name: *place})
	tracker.RequestTelemetry(true)
	tracker.SetCriteria(model.FilterCriteria{OnlyVisible: *onlyVisible, Search: *search})

	mode := timectrl.RealTime
	if *accelerated {
		mode = timectrl.Accelerated
	}
	tc := timectrl.New(time.Now().UTC(), *tick, mode)

	tc.AddListener(func(now time.Time) {
		report := tracker.Tick(now)
		fmt.Printf("[%s] tracked=%d propagated=%d visible=%d eligible=%d failed=%d\n",
			now.Format(time.RFC3339),
			report.Tracked, report.Propagated, report.Visible, report.Eligible, report.Failed)

		obs, hasObs := tracker.Observer()
		if !hasObs {
			return
		}
		for _, d := range tracker.Directives() {
			if d.Degenerate || !d.Eligible {
				continue
			}
			vis := core.EvaluateVisibility(obs, d.Lat, d.Lng, d.Alt)
			if !vis.Visible {
				continue
			}
			det, ok := tracker.Detail(d.ID)
			if !ok {
				continue
			}
			fmt.Printf("↳ %-24s az=%6.1f° el=%5.1f° range=%7.1f km alt=%6.1f km [%s/%s]\n",
				det.Record.Name, vis.Azimuth, vis.Elevation, vis.Range,
				d.Alt, det.Metadata.Operator, det.Metadata.Orbit)
		}
	})

	fmt.Printf("Starting tracker: duration=%s, tick=%s, observer=(%.4f, %.4f)\n",
		*duration, *tick, *lat, *lng)
	done := tc.Run(*duration, nil)
	<-done
	fmt.Println("Done.")
}

func splitSources(raw string) []string {
	out := make([]string, 0, 2)
	for _, src := range strings.Split(raw, ",") {
		if src = strings.TrimSpace(src); src != "" {
			out = append(out, src)
		}
	}
	return out
}
