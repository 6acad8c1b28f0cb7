package main

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

type seedPlayer struct {
	id   string
	name string
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	// Connect directly to the primary database
	dbURL := fmt.Sprintf("%s?authToken=%s", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		log.Fatalf("Failed to open primary database: %s", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to primary database: %s", err)
	}

	log.Info("Successfully connected to the primary database.")

	players := []seedPlayer{
		{id: "player-1", name: "Seeder Player A"},
		{id: "player-2", name: "Seeder Player B"},
		{id: "player-3", name: "Seeder Player C"},
		{id: "player-4", name: "Seeder Player D"},
		{id: "player-5", name: "Seeder Player E"},
		{id: "player-6", name: "Seeder Player F"},
	}
	for _, p := range players {
		_, err := db.Exec("INSERT OR IGNORE INTO players (id, name, phone) VALUES (?, ?, ?)", p.id, p.name, "")
		if err != nil {
			log.Fatalf("Failed to insert dummy player %s: %s", p.name, err)
		}
	}
	log.Info("Ensured dummy players exist.", "count", len(players))

	tournamentID := uuid.NewString()
	if _, err := db.Exec("INSERT INTO tournaments (id, name, position) VALUES (?, ?, 0)", tournamentID, "Seeded Open"); err != nil {
		log.Fatalf("Failed to insert tournament: %s", err)
	}

	groups := [][]seedPlayer{players[:3], players[3:]}
	for gi, roster := range groups {
		groupID := uuid.NewString()
		ids := `["` + roster[0].id + `","` + roster[1].id + `","` + roster[2].id + `"]`
		if _, err := db.Exec(
			"INSERT INTO groups (id, tournament_id, name, position, player_ids_json) VALUES (?, ?, ?, ?, ?)",
			groupID, tournamentID, fmt.Sprintf("Group %d", gi+1), gi, ids,
		); err != nil {
			log.Fatalf("Failed to insert group: %s", err)
		}

		// Round-robin: every pair in the roster meets once.
		position := 0
		for i := 0; i < len(roster); i++ {
			for j := i + 1; j < len(roster); j++ {
				if _, err := db.Exec(
					"INSERT INTO matches (id, group_id, player1_id, player2_id, status, position) VALUES (?, ?, ?, ?, 'PENDING', ?)",
					uuid.NewString(), groupID, roster[i].id, roster[j].id, position,
				); err != nil {
					log.Fatalf("Failed to insert match: %s", err)
				}
				position++
			}
		}
		log.Info("Seeded group", "name", fmt.Sprintf("Group %d", gi+1), "matches", position)
	}

	// Slot payloads deliberately mix field names and time encodings the
	// way exported slot lists do.
	base := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	rawSlots := []string{
		fmt.Sprintf(`{"id":"%s","start":%d,"location":"Court 1","field":"A"}`, uuid.NewString(), base.UnixMilli()),
		fmt.Sprintf(`{"slotId":"%s","time":%d,"location":"Court 1","field":"B"}`, uuid.NewString(), base.Add(2*time.Hour).Unix()),
		fmt.Sprintf(`{"timeSlotId":"%s","date":%q,"location":"Court 2"}`, uuid.NewString(), base.Add(26*time.Hour).Format(time.RFC3339)),
	}
	for _, raw := range rawSlots {
		if _, err := db.Exec("INSERT INTO time_slots (scope, tournament_id, raw_json) VALUES ('EVENT', '', ?)", raw); err != nil {
			log.Fatalf("Failed to insert time slot: %s", err)
		}
	}
	log.Info("Seeded time slots.", "count", len(rawSlots))

	log.Info("Seeding complete.")
}
