package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/config"
	"github.com/Dionysus2359/Tourist-Safety-Monitoring-Incident-Response-System/module/core"
)

func main() {
	cfg := config.Load()

	db, err := config.NewPostgres(cfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	defer mqttClient.Disconnect(250)

	coreModule, err := core.Build(db, amqpConn, mqttClient, cfg.DispatchTimeout)
	if err != nil {
		log.Fatalf("core module: %v", err)
	}

	refreshCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = coreModule.IncidentSvc.RefreshGeofences(refreshCtx)
	cancel()
	if err != nil {
		log.Fatalf("geofence index: %v", err)
	}

	if err := coreModule.StartSubscribers(); err != nil {
		log.Fatalf("start subscribers: %v", err)
	}

	r := gin.Default()

	health := config.NewHealthChecker(db, amqpConn, mqttClient)
	health.Register(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	coreModule.RegisterRoutes(&r.RouterGroup)

	log.Printf("listening on :%s", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("server: %v", err)
	}
}
