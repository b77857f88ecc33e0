package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type incidentMessage struct {
	TouristID string  `json:"tourist_id"`
	Type      string  `json:"type"`
	Severity  string  `json:"severity"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

var (
	incidentTypes = []string{"medical", "theft", "lost", "accident", "harassment"}
	severities    = []string{"low", "medium", "high", "critical"}
)

func randomTouristID() string {
	return fmt.Sprintf("T-%06d", rand.Intn(1000000))
}

func randomLat() float64 {
	return -90 + rand.Float64()*180
}

func randomLon() float64 {
	return -180 + rand.Float64()*360
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("safety-mock-publisher")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	touristPool := make([]string, 5)
	for i := range touristPool {
		touristPool[i] = randomTouristID()
	}

	log.Printf("connected to %s, publishing every %ds...", broker, intervalSec)
	log.Printf("tourist pool: %v", touristPool)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		tid := touristPool[rand.Intn(len(touristPool))]

		var lat, lon float64
		// 30% chance to report near a known geofence center (40.0, -73.0)
		if rand.Float64() < 0.3 {
			lat = 40.0 + (rand.Float64()-0.5)*0.05
			lon = -73.0 + (rand.Float64()-0.5)*0.05
		} else {
			lat = randomLat()
			lon = randomLon()
		}

		msg := incidentMessage{
			TouristID: tid,
			Type:      incidentTypes[rand.Intn(len(incidentTypes))],
			Severity:  severities[rand.Intn(len(severities))],
			Latitude:  lat,
			Longitude: lon,
			Timestamp: time.Now().Unix(),
		}

		payload, _ := json.Marshal(msg)
		topic := fmt.Sprintf("/safety/tourist/%s/incident", tid)

		token := client.Publish(topic, 1, false, payload)
		token.Wait()

		log.Printf("published to %s: %s", topic, payload)
	}
}
