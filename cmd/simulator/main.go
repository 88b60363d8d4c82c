package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/worklens/worklens-agent-go/internal/config"
	"github.com/worklens/worklens-agent-go/internal/domain/attendance"
	appHTTP "github.com/worklens/worklens-agent-go/internal/handler/http"
	"github.com/worklens/worklens-agent-go/internal/pkg/cron"
	"github.com/worklens/worklens-agent-go/internal/pkg/database"
	"github.com/worklens/worklens-agent-go/internal/pkg/jwt"
	"github.com/worklens/worklens-agent-go/internal/realtime"
	"github.com/worklens/worklens-agent-go/internal/repository/memory"
	"github.com/worklens/worklens-agent-go/internal/repository/postgresql"
	attendanceService "github.com/worklens/worklens-agent-go/internal/service/attendance"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}
	if err := cfg.ValidateSimulator(); err != nil {
		fmt.Println("Invalid simulator configuration:", err)
		return
	}

	var dayRepo attendance.DayRepository
	if cfg.Database.URL != "" {
		db, err := database.NewPostgreSQLDB(cfg.Database.URL)
		if err != nil {
			fmt.Println("Error connecting to database:", err)
			return
		}
		dayRepo = postgresql.NewAttendanceRepository(db)
	} else {
		dayRepo = memory.NewAttendanceRepository()
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	attendanceSvc := attendanceService.NewAttendanceService(dayRepo)
	hub := realtime.NewHub(jwtService.JWTAuth())

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	scheduler := cron.NewScheduler(logger)
	cron.NewAttendanceJobs(dayRepo, logger).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, hub)
	router := appHTTP.NewRouter(jwtService, attendanceHandler, hub)

	// Mint a dev token so an agent can be pointed at the simulator directly.
	token, _, err := jwtService.GenerateAccessToken(cfg.Simulator.EmployeeID)
	if err != nil {
		fmt.Println("Error generating dev token:", err)
		return
	}
	fmt.Printf("Dev token for %s:\n%s\n", cfg.Simulator.EmployeeID, token)

	port := fmt.Sprintf(":%d", cfg.Simulator.Port)
	fmt.Printf("Simulator running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
