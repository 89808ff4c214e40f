package main

import (
	"flag"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/ASCCJR/matriz5x5"
	"github.com/ASCCJR/matriz5x5/internal/config"
	"github.com/ASCCJR/matriz5x5/internal/layout"
	"github.com/ASCCJR/matriz5x5/internal/led"
	"github.com/ASCCJR/matriz5x5/internal/ws"
)

func main() {
	// ---- Flags (config.yaml can override most) ----
	var (
		driver     = flag.String("driver", "", "driver: spi | nrz | sim (overrides config)")
		spiDev     = flag.String("spi-dev", "", "SPI port name (overrides config)")
		invert     = flag.Bool("invert", false, "drive the data line inverted")
		fps        = flag.Int("fps", 0, "frames per second (overrides config)")
		pattern    = flag.String("pattern", "", "pattern: sweep | rainbow | heart (overrides config)")
		addr       = flag.String("addr", "", "preview HTTP listen address (overrides config)")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Config, flags win where given ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using defaults")
		cfg = config.Default()
	}
	if *driver != "" {
		cfg.Driver = *driver
	}
	if *spiDev != "" {
		cfg.SPI.Dev = *spiDev
	}
	if *invert {
		cfg.Invert = true
	}
	if *fps > 0 {
		cfg.FPS = *fps
	}
	if *pattern != "" {
		cfg.Pattern = *pattern
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	lay := layout.Layout{
		Dim:   layout.Dim{X: cfg.Width, Y: cfg.Height},
		Order: layout.Serpentine{XFlipOddRows: cfg.XFlipOddRows, YMirror: cfg.YMirror},
	}

	if _, err := host.Init(); err != nil {
		log.Fatal().Err(err).Msg("host init")
	}

	// ---- Driver selection, falling back to the console when no port ----
	drv := openDriver(cfg, lay.Count())

	m, err := matriz.NewWithLayout(drv, lay)
	if err != nil {
		log.Fatal().Err(err).Msg("matrix init")
	}
	defer m.Close()

	// ---- Preview server ----
	state := ws.NewState(lay, cfg.FPS, cfg.Driver)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", state.HandleFramesWS)
	mux.HandleFunc("/health", state.HandleHealth)
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("driver", cfg.Driver).Msg("preview server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("preview server crashed")
		}
	}()

	// ---- Render loop ----
	done := make(chan struct{})
	stopped := make(chan struct{})
	go runLoop(m, state, cfg.Pattern, cfg.FPS, done, stopped)

	// ---- Graceful shutdown ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")

	// The matrix and driver are single-writer; wait until the loop has let
	// go of them before touching either again.
	close(done)
	<-stopped
	_ = srv.Close()

	m.Clear()
	if err := m.Render(); err != nil {
		log.Warn().Err(err).Msg("final blank frame")
	}
}

func openDriver(cfg *config.Config, pixels int) led.Driver {
	if cfg.Driver == "sim" {
		return led.NewScreen(pixels)
	}

	port, err := spireg.Open(cfg.SPI.Dev)
	if err != nil {
		log.Warn().Err(err).Str("dev", cfg.SPI.Dev).Msg("no SPI port; printing at the console")
		cfg.Driver = "sim"
		return led.NewScreen(pixels)
	}

	switch cfg.Driver {
	case "nrz":
		drv, err := led.NewNRZ(port, pixels)
		if err != nil {
			log.Fatal().Err(err).Msg("nrzled init")
		}
		return drv
	case "spi":
		drv, err := led.NewSPI(port, &led.Opts{Invert: cfg.Invert, ResetUs: cfg.SPI.ResetUs})
		if err != nil {
			log.Fatal().Err(err).Msg("spi init")
		}
		return drv
	default:
		log.Warn().Str("driver", cfg.Driver).Msg("unknown driver; printing at the console")
		_ = port.Close()
		cfg.Driver = "sim"
		return led.NewScreen(pixels)
	}
}

func runLoop(m *matriz.Matrix, state *ws.State, pattern string, fps int, done, stopped chan struct{}) {
	defer close(stopped)
	if fps < 1 {
		fps = 1
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	step := 0
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			drawPattern(m, pattern, step)
			if err := m.Render(); err != nil {
				log.Fatal().Err(err).Msg("render")
			}
			state.Publish(frameRGB(m))
			step++
		}
	}
}

func drawPattern(m *matriz.Matrix, pattern string, step int) {
	m.Clear()
	lay := m.Layout()
	switch pattern {
	case "sweep":
		// One lit pixel walking the physical chain; lets you verify the
		// serpentine wiring against what the driver thinks it is.
		target := step % lay.Count()
		for y := 0; y < lay.Dim.Y; y++ {
			for x := 0; x < lay.Dim.X; x++ {
				if lay.Index(x, y) == target {
					m.SetPixel(x, y, 64, 64, 64)
				}
			}
		}
	case "heart":
		for _, p := range heart {
			m.SetPixel(p[0], p[1], 64, 0, 8)
		}
	default: // rainbow
		phase := float64(step) * 0.01
		for y := 0; y < lay.Dim.Y; y++ {
			for x := 0; x < lay.Dim.X; x++ {
				u := float64(x) / float64(lay.Dim.X-1)
				v := float64(y) / float64(lay.Dim.Y-1)
				h := math.Mod(u+v+phase, 1.0)
				r, g, b := hsvToRGB(h, 1.0, 0.25)
				m.SetPixel(x, y, byte(r*255), byte(g*255), byte(b*255))
			}
		}
	}
}

// heart glyph on the 5x5 grid, logical top-left origin.
var heart = [][2]int{
	{1, 0}, {3, 0},
	{0, 1}, {1, 1}, {2, 1}, {3, 1}, {4, 1},
	{0, 2}, {1, 2}, {2, 2}, {3, 2}, {4, 2},
	{1, 3}, {2, 3}, {3, 3},
	{2, 4},
}

func frameRGB(m *matriz.Matrix) []byte {
	lay := m.Layout()
	rgb := make([]byte, lay.Count()*3)
	for y := 0; y < lay.Dim.Y; y++ {
		for x := 0; x < lay.Dim.X; x++ {
			r, g, b := matriz.UnpackRGB(m.Pixel(x, y))
			i := (y*lay.Dim.X + x) * 3
			rgb[i+0] = r
			rgb[i+1] = g
			rgb[i+2] = b
		}
	}
	return rgb
}

func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	switch int(i) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
