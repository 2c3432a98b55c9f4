package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/urfave/cli"

	"github.com/LANIK2000/bevy-simple-networking/nettime"
	"github.com/LANIK2000/bevy-simple-networking/nettime/monitor"
	"github.com/LANIK2000/bevy-simple-networking/nettime/timing"
	"github.com/LANIK2000/bevy-simple-networking/nettime/transport"
)

func main() {
	app := cli.NewApp()
	app.Name = "netsim"
	app.Description = "Fixed-timestep network frame simulator"
	app.Usage = "netsim [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.UintFlag{
			Name:  "tick-rate",
			Usage: "Network frame rate in hertz",
			Value: 60,
		},
		cli.UintFlag{
			Name:  "send-rate",
			Usage: "Send a network message every N frames",
			Value: 1,
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without the terminal monitor",
		},
		cli.StringFlag{
			Name:  "listen",
			Usage: "Address to serve the websocket state feed on (empty = disabled)",
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Frame pacing strategy: adaptive, ticker or none",
			Value: "adaptive",
		},
	}
	app.Action = runSimulator

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running simulator", "error", err)
		os.Exit(1)
	}
}

func runSimulator(c *cli.Context) error {
	nt, err := nettime.NewFromConfig(nettime.Config{
		TickRateHz:      uint32(c.Uint("tick-rate")),
		MessageSendRate: uint8(c.Uint("send-rate")),
	})
	if err != nil {
		return err
	}

	limiter, err := newLimiter(c.String("limiter"), nt.PerFrameDuration())
	if err != nil {
		return err
	}

	var broadcaster *transport.Broadcaster
	if addr := c.String("listen"); addr != "" {
		broadcaster = transport.NewBroadcaster()
		go broadcaster.Run()
		defer broadcaster.Close()

		mux := http.NewServeMux()
		mux.Handle("/ws", broadcaster)
		go func() {
			slog.Info("Serving websocket state feed", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				slog.Error("Websocket server stopped", "error", err)
			}
		}()
	}

	sim := &simulation{
		stepper:     nettime.NewStepper(nt, nil),
		limiter:     limiter,
		broadcaster: broadcaster,
	}

	if c.Bool("headless") {
		frames := c.Int("frames")
		if frames <= 0 {
			return fmt.Errorf("headless mode requires --frames option with a positive value")
		}

		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		slog.SetDefault(slog.New(handler))

		return sim.runHeadless(frames)
	}

	mon, err := monitor.New(sim.snapshot)
	if err != nil {
		return err
	}

	go sim.runForever()
	return mon.Run()
}

func newLimiter(kind string, frameTime time.Duration) (timing.Limiter, error) {
	switch kind {
	case "adaptive":
		return timing.NewAdaptiveLimiter(frameTime), nil
	case "ticker":
		return timing.NewTickerLimiter(frameTime), nil
	case "none":
		return timing.NewNoOpLimiter(), nil
	default:
		return nil, fmt.Errorf("unknown limiter %q", kind)
	}
}

// simulation runs the host loop. The monitor reads state through
// snapshot, so every access to the accumulator stays behind mu.
type simulation struct {
	mu          sync.Mutex
	stepper     *nettime.Stepper
	limiter     timing.Limiter
	broadcaster *transport.Broadcaster
}

type frameState struct {
	Lag      uint32 `json:"lag"`
	BankedNs int64  `json:"bankedNs"`
}

// step runs one host-loop iteration and returns how many network frames
// it executed.
func (s *simulation) step() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	nt := s.stepper.Time()
	batch := s.stepper.Step()
	// iterate by count: frame <= batch.Last would wrap around and spin
	// if the batch ever ended at the maximum frame number
	for i, frame := 0, batch.First; i < batch.Count; i, frame = i+1, frame+1 {
		// Simulation systems would run here for this frame.
		if s.broadcaster != nil && nt.ShouldSend(frame) {
			payload, err := json.Marshal(frameState{
				Lag:      nt.FrameLag(),
				BankedNs: int64(nt.Elapsed()),
			})
			if err == nil {
				err = s.broadcaster.BroadcastFrame(frame, payload)
			}
			if err != nil {
				slog.Error("Failed to broadcast frame", "frame", frame, "error", err)
			}
		}
	}
	s.stepper.Ack()
	return batch.Count
}

func (s *simulation) runHeadless(frames int) error {
	slog.Info("Running headless mode", "frames", frames)

	executed := 0
	for executed < frames {
		s.limiter.WaitForNextFrame()
		executed += s.step()

		if executed%100 == 0 {
			slog.Info("Frame progress", "completed", executed, "total", frames)
		}
	}

	slog.Info("Headless execution completed", "frames", executed)
	return nil
}

func (s *simulation) runForever() {
	for {
		s.limiter.WaitForNextFrame()
		s.step()
	}
}

func (s *simulation) snapshot() monitor.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	nt := s.stepper.Time()
	return monitor.Snapshot{
		FrameNumber:      nt.FrameNumber(),
		FrameLag:         nt.FrameLag(),
		Elapsed:          nt.Elapsed(),
		PerFrameDuration: nt.PerFrameDuration(),
		MessageSendRate:  nt.MessageSendRate(),
		Sending:          nt.ShouldSendNow(),
	}
}
