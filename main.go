// Package main provides the entry point for the overlay HUD: a transparent
// always-on-top window that renders legacy overlay payloads on top of a
// tracked external application window.
package main

import (
	"bufio"
	"flag"
	"log"
	"net"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	hudapp "overlay-hud/internal/app"
	"overlay-hud/internal/grouping"
	"overlay-hud/internal/nativegeom"
	"overlay-hud/internal/placement"
	"overlay-hud/internal/remap"
	"overlay-hud/internal/version"
	"overlay-hud/internal/viewport"
	"overlay-hud/pkg/geometry"
	"overlay-hud/ui/hud"
	"overlay-hud/ui/prefs"
)

const (
	appTitle = "Overlay HUD"

	rulesFile     = "groups.json"
	placementFile = "placement.json"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	var (
		addrFlag       = flag.String("addr", "", "listen address for the legacy payload feed (overrides prefs)")
		modeFlag       = flag.String("mode", "", "scaling mode: fit or fill (overrides prefs)")
		noDebounce     = flag.Bool("no-debounce", false, "disable repaint coalescing (diagnostics)")
		resetPlacement = flag.Bool("reset-placement", false, "clear the persisted placement cache and exit")
	)
	flag.Parse()

	appPrefs := prefs.Load()
	cfg := configFromPrefs(appPrefs)
	if *modeFlag != "" {
		cfg.Mode = viewport.ParseMode(*modeFlag)
	}
	if *noDebounce {
		cfg.DebounceDisabled = true
	}

	cachePath := filepath.Join(prefs.Dir(), placementFile)
	cache := placement.Load(cachePath)
	if *resetPlacement {
		if err := cache.Reset(); err != nil {
			log.Fatalf("placement reset failed: %v", err)
		}
		log.Printf("placement cache cleared (%s)", cachePath)
		return
	}

	rulesPath := filepath.Join(prefs.Dir(), rulesFile)
	userRules, err := grouping.LoadRules(rulesPath)
	if err != nil {
		log.Printf("grouping rules unreadable, starting with defaults: %v", err)
		userRules = grouping.Rules{}
	}
	defaults := grouping.DefaultRules()

	engine := hudapp.NewEngine(cfg, grouping.Merge(defaults, userRules), cache)

	stopWatch, err := grouping.WatchRules(rulesPath, func(r grouping.Rules) {
		engine.SetRules(grouping.Merge(defaults, r))
	})
	if err != nil {
		log.Printf("rules watcher unavailable: %v", err)
	} else {
		defer stopWatch()
	}

	addr := appPrefs.String(prefs.KeyListenAddr, "127.0.0.1:5010")
	if *addrFlag != "" {
		addr = *addrFlag
	}
	go serveFeed(addr, engine)

	a := fyneapp.New()
	win := a.NewWindow(appTitle)
	win.SetPadded(false)
	win.Resize(fyne.NewSize(viewport.CanvasWidth, viewport.CanvasHeight))

	view := hud.NewView()
	win.SetContent(view.Content())
	engine.OnPaint(func(cmds []remap.Command) {
		// The paint callback fires on the engine's render goroutine;
		// the object tree may only be touched on the fyne main thread.
		fyne.Do(func() {
			view.Render(cmds)
		})
	})

	tracker := nativegeom.NewTracker(&windowSource{win: win}, cfg.Geometry, cfg.TrackInterval)
	tracker.OnChange(func(_ nativegeom.Result, vs viewport.State) {
		engine.SetViewport(vs)
	})
	tracker.Start()
	defer tracker.Stop()

	go engine.Run()
	defer engine.Stop()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := cache.Save(); err != nil {
				log.Printf("placement save failed: %v", err)
			}
		}
	}()

	win.ShowAndRun()

	if err := cache.Save(); err != nil {
		log.Printf("placement save failed: %v", err)
	}
}

// configFromPrefs builds the engine configuration from the prefs file.
func configFromPrefs(p *prefs.Prefs) hudapp.Config {
	cfg := hudapp.DefaultConfig()
	cfg.Mode = viewport.ParseMode(p.String(prefs.KeyMode, "fit"))
	cfg.Geometry = nativegeom.Config{
		ClampEnabled:     p.Bool(prefs.KeyClampEnabled, false),
		MonitorOverrides: p.Map(prefs.KeyMonitorOverrides),
	}
	if ms := p.Float(prefs.KeyDebounceMillis, 0); ms > 0 {
		cfg.DebounceWindow = time.Duration(ms) * time.Millisecond
	}
	cfg.DebounceDisabled = p.Bool(prefs.KeyDebounceDisabled, false)
	return cfg
}

// serveFeed accepts legacy feed connections and forwards each line to the
// engine. The socket is plain line-oriented JSON, one payload per line.
func serveFeed(addr string, engine *hudapp.Engine) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("feed listener failed on %s: %v", addr, err)
		return
	}
	log.Printf("listening for payloads on %s", addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("feed accept failed: %v", err)
			return
		}
		go func(c net.Conn) {
			defer c.Close()
			scanner := bufio.NewScanner(c)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				engine.Ingest(scanner.Bytes())
			}
		}(conn)
	}
}

// windowSource samples the HUD's own window as the tracked geometry: the
// window manager keeps the HUD glued over the target application, so its
// canvas is the viewport.
type windowSource struct {
	win fyne.Window
}

func (s *windowSource) Sample() (nativegeom.Sample, error) {
	var size fyne.Size
	var scale float64
	fyne.DoAndWait(func() {
		size = s.win.Canvas().Size()
		scale = float64(s.win.Canvas().Scale())
	})
	if scale <= 0 {
		scale = 1
	}

	logical := geometry.NewRect(0, 0, float64(size.Width), float64(size.Height))
	native := geometry.NewRect(0, 0, logical.Width*scale, logical.Height*scale)
	return nativegeom.Sample{
		Native:  nativegeom.NativeRect{Rect: native},
		Logical: logical,
		DPR:     scale,
	}, nil
}
