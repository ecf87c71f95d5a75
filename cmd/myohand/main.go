// Command myohand reads a surface EMG sensor, classifies muscle contractions
// into OPEN/CLOSE gestures and drives the finger servos of a prosthetic hand.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/myohand/internal/emg"
	"github.com/sweeney/myohand/internal/gpio"
	"github.com/sweeney/myohand/internal/logic"
	"github.com/sweeney/myohand/internal/mqtt"
	"github.com/sweeney/myohand/internal/servo"
	"github.com/sweeney/myohand/internal/status"
	"github.com/sweeney/myohand/internal/web"
)

type options struct {
	cycle       time.Duration
	pipeline    logic.Config
	sensor      string
	servoPort   string
	calibration string
	broker      string
	heartbeat   time.Duration
	ledPin      int
	httpAddr    string
	printSample bool
	listPorts   bool
}

func main() {
	def := logic.DefaultConfig()
	var opts options

	flag.DurationVar(&opts.cycle, "cycle", 50*time.Millisecond, "Control loop period")
	flag.IntVar(&opts.pipeline.ActivationThreshold, "activation", def.ActivationThreshold, "Filtered level that starts a contraction")
	flag.IntVar(&opts.pipeline.DeactivationThreshold, "deactivation", def.DeactivationThreshold, "Filtered level that ends a contraction")
	flag.DurationVar(&opts.pipeline.DebounceTime, "debounce", def.DebounceTime, "Minimum time between accepted transitions")
	flag.Float64Var(&opts.pipeline.Alpha, "alpha", def.Alpha, "Low-pass smoothing factor (0 < alpha < 1)")
	flag.IntVar(&opts.pipeline.NoiseThreshold, "noise", def.NoiseThreshold, "Half-width of the noise band around center")
	flag.IntVar(&opts.pipeline.Center, "center", def.Center, "Sensor resting level")
	flag.IntVar(&opts.pipeline.ADCMax, "adc-max", def.ADCMax, "Largest raw sample value")
	flag.StringVar(&opts.sensor, "sensor", "serial:///dev/ttyUSB0", "EMG sensor: serial://PATH[?baud=N] or iio://DEVICE/CHANNEL")
	flag.StringVar(&opts.servoPort, "servo-port", "", "Feetech servo bus port (empty logs gestures only)")
	flag.StringVar(&opts.calibration, "calibration", "", "Hand calibration JSON file")
	flag.StringVar(&opts.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address (empty to disable)")
	flag.DurationVar(&opts.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.IntVar(&opts.ledPin, "led-pin", gpio.DefaultPinLED, "BCM pin number for the status LED (-1 to disable)")
	flag.StringVar(&opts.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.BoolVar(&opts.printSample, "print-sample", false, "Print one sensor sample and exit")
	flag.BoolVar(&opts.listPorts, "list-ports", false, "List serial ports and exit")

	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(opts options) error {
	if opts.listPorts {
		ports, err := emg.ListPorts()
		if err != nil {
			return fmt.Errorf("list ports: %w", err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return nil
	}

	// Fails fast on a bad threshold or alpha before any hardware is touched.
	pipeline, err := logic.NewPipeline(opts.pipeline, logic.SystemClock)
	if err != nil {
		return err
	}

	spec, err := emg.ParseSensor(opts.sensor)
	if err != nil {
		return err
	}
	source, err := emg.Open(spec, opts.pipeline.ADCMax)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer source.Close()

	if opts.printSample {
		return printSample(source, opts.cycle)
	}

	hand, err := openHand(opts.servoPort, opts.calibration)
	if err != nil {
		return err
	}
	defer hand.Close()

	var publisher interface {
		mqtt.Publisher
		mqtt.ConnectionStatus
	} = mqtt.NopPublisher{}
	if opts.broker != "" {
		publisher = mqtt.NewRealPublisher(opts.broker)
	}
	defer publisher.Close()

	led := openLED(opts.ledPin)
	defer led.Close()

	cfg := status.NewConfig(opts.cycle, opts.heartbeat, opts.pipeline)
	cfg.Sensor = opts.sensor
	cfg.ServoPort = opts.servoPort
	cfg.Broker = opts.broker
	cfg.HTTPAddr = opts.httpAddr
	tracker := status.NewTracker(time.Now(), cfg)
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	if opts.httpAddr != "" {
		srv := web.New(opts.httpAddr, tracker)
		httpCtx, stopHTTP := context.WithCancel(context.Background())
		httpDone := make(chan struct{})
		go func() {
			defer close(httpDone)
			if err := srv.Run(httpCtx); err != nil {
				log.Printf("http server error: %v", err)
			}
		}()
		defer func() {
			stopHTTP()
			<-httpDone
		}()
		log.Printf("http status server listening on %s", opts.httpAddr)
	}

	log.Printf("started: sensor=%s cycle=%v activation=%d deactivation=%d debounce=%v alpha=%g broker=%s heartbeat=%v",
		opts.sensor, opts.cycle, opts.pipeline.ActivationThreshold, opts.pipeline.DeactivationThreshold,
		opts.pipeline.DebounceTime, opts.pipeline.Alpha, opts.broker, opts.heartbeat)

	ticker := time.NewTicker(opts.cycle)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(loopDeps{
		source:     source,
		pipeline:   pipeline,
		hand:       hand,
		publisher:  publisher,
		mqttStatus: publisher,
		led:        led,
		tracker:    tracker,
		window:     emg.NewWindow(emg.DefaultWindowSize),
		heartbeat:  opts.heartbeat,
		now:        time.Now,
	}, ticker.C, sigCh)
}

// printSample waits up to a second for the sensor to produce a value.
func printSample(source emg.Source, cycle time.Duration) error {
	deadline := time.Now().Add(time.Second)
	for {
		v, err := source.Read()
		if err == nil {
			fmt.Printf("EMG: %d\n", v)
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("read sensor: %w", err)
		}
		time.Sleep(cycle)
	}
}

func openHand(port, calibrationPath string) (servo.Hand, error) {
	if port == "" {
		log.Printf("servo: no port configured, gestures are logged only")
		return servo.NewLogHand(), nil
	}
	cal := servo.DefaultCalibration()
	if calibrationPath != "" {
		var err error
		if cal, err = servo.LoadCalibration(calibrationPath); err != nil {
			return nil, err
		}
	}
	hand, err := servo.NewFeetechHand(context.Background(), port, cal)
	if err != nil {
		return nil, fmt.Errorf("init servos: %w", err)
	}
	return hand, nil
}

// openLED falls back to a no-op LED so a missing GPIO chip never stops the hand.
func openLED(pin int) gpio.LED {
	if pin < 0 {
		return gpio.NopLED{}
	}
	led, err := gpio.NewRealLED(pin)
	if err != nil {
		log.Printf("gpio: status LED unavailable: %v", err)
		return gpio.NopLED{}
	}
	return led
}

// sensorErrorLogEvery limits a persistent sensor fault to one log line per
// 200 cycles (10s at the default period).
const sensorErrorLogEvery = 200

type loopDeps struct {
	source     emg.Source
	pipeline   *logic.Pipeline
	hand       servo.Hand
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	led        gpio.LED
	tracker    *status.Tracker
	window     *emg.Window
	heartbeat  time.Duration
	now        func() time.Time
}

func runLoop(d loopDeps, tick <-chan time.Time, sig <-chan os.Signal) error {
	ctx := context.Background()
	ledOn := false
	lastGesture := d.pipeline.Gesture()
	failedReads, lastReadErr := 0, ""

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: d.now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if d.tracker != nil {
				if d.mqttStatus != nil {
					d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
				}
				snap := d.tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := d.publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			raw, err := d.source.Read()
			if err != nil {
				failedReads++
				if failedReads == 1 || err.Error() != lastReadErr || failedReads%sensorErrorLogEvery == 0 {
					log.Printf("sensor read error: %v (%d consecutive)", err, failedReads)
				}
				lastReadErr = err.Error()
				continue
			}
			if failedReads > 0 {
				log.Printf("sensor recovered after %d failed reads", failedReads)
				failedReads, lastReadErr = 0, ""
			}
			if d.window != nil {
				d.window.Add(raw)
			}

			decision := d.pipeline.Cycle(raw)

			if err := d.hand.Apply(ctx, decision.Command()); err != nil {
				log.Printf("servo error: %v", err)
			}
			if decision.Gesture != lastGesture {
				log.Printf("gesture: %s (filtered=%d)", decision.Gesture, decision.Filtered)
				lastGesture = decision.Gesture
			}

			if err := d.publisher.Publish(decision); err != nil {
				log.Printf("publish error: %v", err)
			}

			connected := d.mqttStatus != nil && d.mqttStatus.IsConnected()
			if connected != ledOn {
				if err := d.led.Set(connected); err != nil {
					log.Printf("led error: %v", err)
				} else {
					ledOn = connected
				}
			}

			if d.tracker != nil {
				avg := 0
				if d.window != nil {
					avg = d.window.Average()
				}
				d.tracker.Update(decision, d.pipeline.Counts(), avg)
				d.tracker.SetMQTTConnected(connected)
			}

			if hb := d.pipeline.CheckHeartbeat(decision.Timestamp, d.heartbeat); hb != nil {
				log.Printf("heartbeat: uptime=%v gesture=%s cycles=%d opens=%d closes=%d suppressed=%d",
					hb.Uptime, hb.Gesture, hb.Counts.Cycles, hb.Counts.Opens, hb.Counts.Closes, hb.Counts.Suppressed)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hb.Timestamp,
					Event:     "HEARTBEAT",
				}
				if d.tracker != nil {
					if net := readNetworkInfo(); net != nil {
						d.tracker.SetNetwork(net)
					}
					snap := d.tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := d.publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
