// Package service wires the bloom calendar runtime together: the plant
// datastore, the image cache, the dashboard web server and the optional
// Prometheus endpoint.
package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/csvimport"
	"github.com/verdantlabs/bloomcal/internal/datastore"
	"github.com/verdantlabs/bloomcal/internal/httpcontroller"
	"github.com/verdantlabs/bloomcal/internal/observability"
	"github.com/verdantlabs/bloomcal/internal/observability/metrics"
	"github.com/verdantlabs/bloomcal/internal/plantimages"
)

// Run starts the bloom calendar service and blocks until a termination
// signal arrives.
func Run(settings *conf.Settings) error {
	fmt.Printf("Starting %s for garden %q at (%.4f, %.4f)\n",
		settings.Main.Name,
		settings.Garden.Name,
		settings.Garden.Latitude,
		settings.Garden.Longitude)

	// Initialize Prometheus metrics manager
	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("error initializing metrics: %w", err)
	}

	dataStore, err := OpenDataStore(settings, metrics)
	if err != nil {
		return err
	}
	defer closeDataStore(dataStore)

	// quitChan is used to signal the goroutines to stop.
	quitChan := make(chan struct{})

	var imageCache *plantimages.PlantImageCache
	if settings.Images.Provider != "none" {
		imageCache = initPlantImageCache(settings, metrics, dataStore, quitChan)
	}

	// Initialize and start the HTTP server
	httpServer := httpcontroller.New(settings, dataStore, imageCache, metrics)
	httpServer.Start()

	// Initialize the wait group to wait for all goroutines to finish
	var wg sync.WaitGroup

	// start metrics endpoint
	startMetricsEndpoint(&wg, settings, metrics, quitChan)

	// start quit signal monitor
	monitorShutdownSignals(quitChan)

	<-quitChan

	if err := httpServer.Shutdown(); err != nil {
		log.Printf("Failed to shut down web server: %v", err)
	}
	if imageCache != nil {
		if err := imageCache.Close(); err != nil {
			log.Printf("Failed to close image cache: %v", err)
		}
	}

	// Wait for all goroutines to finish.
	wg.Wait()

	return nil
}

// OpenDataStore selects the backing store from the output settings. With a
// database output enabled the plants live in SQLite or MySQL, otherwise the
// dataset file is loaded into an in-memory store for the lifetime of the
// process. Metrics are optional so one-shot commands can pass nil.
func OpenDataStore(settings *conf.Settings, m *observability.Metrics) (datastore.Interface, error) {
	var dsMetrics *metrics.DatastoreMetrics
	if m != nil {
		dsMetrics = m.Datastore
	}

	if store := datastore.New(settings, dsMetrics); store != nil {
		if err := store.Open(); err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return store, nil
	}

	result, err := csvimport.ReadFile(settings.Dataset.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", settings.Dataset.Path, err)
	}
	log.Printf("Loaded %d plants from %s", len(result.Plants), settings.Dataset.Path)
	return datastore.NewMemoryStore(result.Plants), nil
}

// initPlantImageCache sets up the thumbnail cache. Warm-up runs in the
// background so a slow provider does not delay startup. Any failure here
// only disables thumbnails.
func initPlantImageCache(settings *conf.Settings, metrics *observability.Metrics, ds datastore.Interface, quitChan <-chan struct{}) *plantimages.PlantImageCache {
	imageCache, err := plantimages.CreateDefaultCache(settings, metrics.ImageProvider, ds)
	if err != nil {
		log.Printf("Failed to create image cache: %v", err)
		return nil
	}

	if !settings.Images.WarmUp {
		return imageCache
	}

	plants, err := ds.GetAllPlants()
	if err != nil {
		log.Printf("Failed to list plants for image warm-up: %v", err)
		return imageCache
	}

	names := make([]string, 0, len(plants))
	for i := range plants {
		names = append(names, plants[i].ScientificName)
	}

	go func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			<-quitChan
			cancel()
		}()
		if err := imageCache.WarmUp(ctx, names); err != nil {
			log.Printf("Image cache warm-up ended with error: %v", err)
		}
	}()

	return imageCache
}

// startMetricsEndpoint starts the dedicated telemetry listener. With no
// dedicated address configured the web server exposes /metrics itself and
// there is nothing to start here.
func startMetricsEndpoint(wg *sync.WaitGroup, settings *conf.Settings, metrics *observability.Metrics, quitChan chan struct{}) {
	if settings.Telemetry.Enabled && settings.Telemetry.Listen != "" {
		endpoint, err := observability.NewEndpoint(settings, metrics)
		if err != nil {
			log.Printf("Error initializing metrics endpoint: %v", err)
			return
		}

		// Start metrics server
		endpoint.Start(wg, quitChan)
	}
}

// monitorShutdownSignals listens for SIGINT and SIGTERM and triggers the
// shutdown process.
func monitorShutdownSignals(quitChan chan struct{}) {
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		sig := <-sigChan

		log.Printf("Received %s, shutting down", sig)
		close(quitChan)
	}()
}

// closeDataStore attempts to close the database connection and logs the
// result.
func closeDataStore(store datastore.Interface) {
	if err := store.Close(); err != nil {
		log.Printf("Failed to close database: %v", err)
	}
}
