package main

import (
	"log/slog"
	"net/http"
	"os"

	"keydojo/api/httpapi"
	"keydojo/curriculum"
	"keydojo/engine"
	"keydojo/leaderboard"
	"keydojo/progression"
	"keydojo/realtime"
)

// A minimal development server: in-memory storage, sync dispatch, a tiny
// demo curriculum and no auth. For the configurable build see keydojo-server.
func main() {
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(textHandler))

	graph, err := curriculum.NewGraph(demoCurriculum())
	if err != nil {
		slog.Error("bad demo curriculum", "error", err)
		os.Exit(1)
	}

	hub := realtime.NewHub()
	board := leaderboard.NewSkipList()
	svc := progression.New(
		progression.WithDispatchMode(engine.DispatchSync),
		progression.WithRealtime(hub),
		progression.WithLeaderboard(board),
	)
	defer svc.Close()

	handler := httpapi.NewMux(svc, hub, httpapi.Options{
		AllowCORSOrigin: "*",
		Graph:           graph,
		Board:           board,
	})

	slog.Info("starting demo server on :8080")

	if err := http.ListenAndServe(":8080", handler); err != nil {
		slog.Error("demo server crashed", "error", err)
		os.Exit(1)
	}
}

func demoCurriculum() []curriculum.Node {
	return []curriculum.Node{
		{ID: "home-row", Title: "Home Row Basics", ExperienceReward: 50, Order: 1},
		{ID: "top-row", Title: "Top Row", ExperienceReward: 50, Order: 2,
			Requirements: &curriculum.Requirements{PreviousNodes: []curriculum.NodeID{"home-row"}}},
		{ID: "bottom-row", Title: "Bottom Row", ExperienceReward: 50, Order: 3,
			Requirements: &curriculum.Requirements{PreviousNodes: []curriculum.NodeID{"home-row"}}},
		{ID: "shortcuts-101", Title: "Editor Shortcuts 101", ExperienceReward: 75, Order: 4,
			Requirements: &curriculum.Requirements{
				PreviousNodes: []curriculum.NodeID{"top-row", "bottom-row"},
				MinExperience: 200,
			}},
		{ID: "speed-trial", Title: "Speed Trial", ExperienceReward: 100, Order: 5,
			Requirements: &curriculum.Requirements{
				PreviousNodes: []curriculum.NodeID{"shortcuts-101"},
				MinLevel:      3,
			}},
	}
}
