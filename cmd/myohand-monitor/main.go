// Command myohand-monitor plots the hand's EMG telemetry in the terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sweeney/myohand/internal/logic"
	"github.com/sweeney/myohand/internal/mqtt"
)

func main() {
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	topic := flag.String("topic", mqtt.Topic, "EMG telemetry topic")
	activation := flag.Int("activation", logic.DefaultConfig().ActivationThreshold, "Activation threshold to draw")
	adcMax := flag.Int("adc-max", logic.DefaultConfig().ADCMax, "Largest raw sample value")
	flag.Parse()

	if err := run(*broker, *topic, *activation, *adcMax); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(broker, topic string, activation, adcMax int) error {
	// paho and our own packages log through the standard logger, which would
	// tear the alt screen.
	log.SetOutput(io.Discard)

	readings := make(chan mqtt.EMGPayload, 64)
	sub, err := mqtt.NewSubscriber(broker, mqtt.ClientID+"-monitor", topic, func(p mqtt.EMGPayload) {
		select {
		case readings <- p:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer sub.Close()

	p := tea.NewProgram(initialModel(readings, broker, activation, adcMax), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run monitor: %w", err)
	}
	return nil
}
