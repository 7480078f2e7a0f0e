package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FieldPulse/FP-Attendance/internal/attendance"
	"github.com/FieldPulse/FP-Attendance/internal/auth"
	"github.com/FieldPulse/FP-Attendance/internal/db"
	"github.com/FieldPulse/FP-Attendance/internal/middleware"
	"github.com/FieldPulse/FP-Attendance/internal/syncqueue"
	"github.com/FieldPulse/FP-Attendance/internal/tracking"
	"github.com/FieldPulse/FP-Attendance/internal/zones"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	deviceSecret, err := auth.DeviceSigningSecret()
	if err != nil {
		log.Fatal("Failed to load device signing secret: ", err)
	}

	auth.Init()
	zones.Init(zones.NoopMonitor{})
	syncqueue.Init(syncqueue.DefaultOptions())
	attendance.Init(zones.DefaultRegistry, syncqueue.DefaultQueue)
	tracking.Init(zones.DefaultRegistry, attendance.Svc)

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/auth", auth.SetupRoutes())
	r.Mount("/zones", zones.SetupRoutes())
	r.Mount("/attendance", attendance.SetupRoutes())
	r.Mount("/tracking", tracking.SetupRoutes(deviceSecret))

	ctx, cancel := context.WithCancel(context.Background())
	go syncqueue.DefaultQueue.Run(ctx)

	evaluator := attendance.NewEndOfDayEvaluator(attendance.Svc, attendance.GormDirectory{})
	go evaluator.Run(ctx)

	server := &http.Server{Addr: "0.0.0.0:" + port, Handler: r}
	go func() {
		fmt.Println("Server listening on port :" + port + "...")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed: ", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}

	// Drain in-flight sample streams, then stop the background runners. The
	// queue's Run loop lets an in-flight flush finish before returning.
	tracking.DefaultTracker.Stop()
	cancel()
}
