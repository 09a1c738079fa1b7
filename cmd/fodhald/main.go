// Command fodhald is the in-screen fingerprint HAL daemon. It exports the
// fingerprint adapter on the message bus for the biometrics framework,
// relays finger-state changes to the vendor sensor-control service, and
// serves an HTTP status endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/banshee-data/inscreen.hal/internal/api"
	"github.com/banshee-data/inscreen.hal/internal/config"
	"github.com/banshee-data/inscreen.hal/internal/fod"
	"github.com/banshee-data/inscreen.hal/internal/hal"
	"github.com/banshee-data/inscreen.hal/internal/monitoring"
	"github.com/banshee-data/inscreen.hal/internal/sensorctl"
	"github.com/banshee-data/inscreen.hal/internal/sysfs"
	"github.com/banshee-data/inscreen.hal/internal/variant"
	"github.com/banshee-data/inscreen.hal/internal/version"
)

var (
	devMode    = flag.Bool("dev", false, "Run in dev mode with fake sysfs nodes and a mock vendor service")
	configPath = flag.String("config", "", "Path to JSON config file")
	listen     = flag.String("listen", "", "HTTP listen address (overrides config)")
	busName    = flag.String("bus", "system", "Message bus to use: system or session")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	cfg := config.Empty()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		log.Printf("loaded config from %s", *configPath)
	}
	monitoring.SetDebug(*debug || cfg.GetDebug())

	addr := cfg.GetListen()
	if *listen != "" {
		addr = *listen
	}

	bootloader := cfg.GetBootloader()
	if bootloader == "" {
		var err error
		bootloader, err = variant.CmdlineBootloader(cfg.GetCmdlinePath())
		if err != nil {
			log.Printf("failed to read bootloader identifier: %v", err)
		}
	}
	v := variant.Detect(bootloader)
	log.Printf("fodhald %s: device variant %s (bootloader %q)", version.String(), v, bootloader)

	var (
		panel, backlight sysfs.Node
		sensor           sensorctl.Requester
		sensorClient     *sensorctl.Client
		conn             *dbus.Conn
	)
	if *devMode {
		fakePanel := sysfs.NewTestableNode(cfg.GetPanelCommandPath(), "")
		fakeBacklight := sysfs.NewTestableNode(cfg.GetBrightnessPath(), "128")
		fakeBacklight.Persist = true
		panel, backlight = fakePanel, fakeBacklight
		sensor = sensorctl.NewMockRequester()
		log.Printf("dev mode: using fake sysfs nodes and mock vendor service")
	} else {
		panel = sysfs.NewFileNode(cfg.GetPanelCommandPath())
		backlight = sysfs.NewFileNode(cfg.GetBrightnessPath())

		var err error
		conn, err = connectBus(*busName)
		if err != nil {
			log.Fatalf("failed to connect to %s bus: %v", *busName, err)
		}
		defer conn.Close()

		sensorClient, err = sensorctl.NewClient(conn)
		if err != nil {
			log.Fatalf("failed to create sensor-control client: %v", err)
		}
		sensor = sensorClient
	}

	adapter, err := fod.New(fod.Config{
		Variant:           v,
		PressedBrightness: cfg.GetPressedBrightness(),
	}, sensor, panel, backlight)
	if err != nil {
		log.Fatalf("failed to construct adapter: %v", err)
	}

	if conn != nil {
		halService, err := hal.New(conn, adapter)
		if err != nil {
			log.Fatalf("failed to create bus service: %v", err)
		}
		if err := halService.Export(); err != nil {
			log.Fatalf("failed to export bus service: %v", err)
		}
		log.Printf("exported %s on the %s bus", hal.BusName, *busName)
	} else {
		log.Printf("dev mode: not exporting on the message bus")
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(adapter, panel, backlight)
	httpServer := &http.Server{Addr: addr, Handler: server.ServeMux()}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP status server listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	if sensorClient != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := sensorClient.WatchAcquired(ctx, adapter.HandleAcquired)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("acquisition watcher stopped: %v", err)
				stop()
			}
		}()
	}

	if *devMode {
		// Synthesise alternating finger down/up events so the full dispatch
		// path can be observed without hardware.
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(3 * time.Second)
			defer ticker.Stop()
			down := true
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					code := fod.VendorCodeFingerUp
					if down {
						code = fod.VendorCodeFingerDown
					}
					down = !down
					adapter.HandleAcquired(fod.AcquiredVendor, code)
				}
			}
		}()
	}

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}

	wg.Wait()
}

func connectBus(name string) (*dbus.Conn, error) {
	switch name {
	case "session":
		return dbus.ConnectSessionBus()
	case "system":
		return dbus.ConnectSystemBus()
	default:
		return nil, errors.New("bus must be system or session")
	}
}
