package request

import (
	"fmt"
	"os"
	"testing"

	"license-desk/src/config"

	"github.com/go-pg/pg/v10"
	"github.com/joho/godotenv"
)

var conn *pg.DB

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env")

	if os.Getenv("LICENSE_DB_PASS") == "" {
		// No test database configured; the MemStore tests still run.
		fmt.Println("LICENSE_DB_PASS not set, skipping postgres store tests")
		os.Exit(m.Run())
	}

	conn = pg.Connect(&pg.Options{
		Addr: fmt.Sprintf("%s:%s",
			envOr("LICENSE_DB_HOST", "localhost"),
			envOr("LICENSE_DB_PORT", "5432")),
		User:     envOr("LICENSE_DB_USER", "postgres"),
		Password: os.Getenv("LICENSE_DB_PASS"),
		Database: envOr("LICENSE_DB_TEST_NAME", config.DefaultDBTestName),
	})

	if err := NewPGStore(conn).CreateSchema(); err != nil {
		fmt.Println("could not create test schema: ", err)
		os.Exit(1)
	}

	exitCode := m.Run()

	conn.Close()
	os.Exit(exitCode)
}

func envOr(name, def string) string {
	if v, found := os.LookupEnv(name); found {
		return v
	}
	return def
}

func TestPGStore(t *testing.T) {
	if conn == nil {
		t.Skip("no test database configured")
	}

	store := NewPGStore(conn)

	t.Cleanup(func() {
		if _, err := conn.Model((*LicenseRequest)(nil)).Where("1=1").Delete(); err != nil {
			fmt.Println("error: ", err)
		}
	})

	created, err := store.Create(sampleFields())
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == 0 {
		t.Fatal("expected the insert to assign an id")
	}
	if created.Status != StatusPending {
		t.Errorf("expected status %q but got %q", StatusPending, created.Status)
	}

	t.Run("round-trips a request", func(t *testing.T) {
		got, err := store.Get(created.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.FacilityName != created.FacilityName || got.LicenseType != created.LicenseType {
			t.Errorf("fetched %+v does not match created %+v", got, created)
		}
	})

	t.Run("returns ErrNotFound for an unknown id", func(t *testing.T) {
		if _, err := store.Get(created.ID + 1000); err != ErrNotFound {
			t.Errorf("expected ErrNotFound but got %v", err)
		}
		if err := store.UpdateStatus(created.ID+1000, StatusApproved); err != ErrNotFound {
			t.Errorf("expected ErrNotFound but got %v", err)
		}
	})

	t.Run("updates only the status", func(t *testing.T) {
		if err := store.UpdateStatus(created.ID, StatusApproved); err != nil {
			t.Fatal(err)
		}
		got, err := store.Get(created.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != StatusApproved {
			t.Errorf("expected status %q but got %q", StatusApproved, got.Status)
		}
		if got.FacilityName != created.FacilityName {
			t.Errorf("facility_name changed on a status update: %q", got.FacilityName)
		}
	})

	t.Run("lists newest first and filters by status", func(t *testing.T) {
		second, err := store.Create(sampleFields())
		if err != nil {
			t.Fatal(err)
		}

		all, err := store.List("")
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 2 || all[0].ID != second.ID {
			t.Errorf("expected the newest request first but got %+v", all)
		}

		approved, err := store.List(StatusApproved)
		if err != nil {
			t.Fatal(err)
		}
		if len(approved) != 1 || approved[0].ID != created.ID {
			t.Errorf("expected only the approved request but got %+v", approved)
		}
	})

	t.Run("aggregates counts", func(t *testing.T) {
		counts, err := store.Counts()
		if err != nil {
			t.Fatal(err)
		}
		if counts.Total != 2 || counts.Approved != 1 || counts.Pending != 1 {
			t.Errorf("unexpected counts %+v", counts)
		}

		byType, err := store.CountByType()
		if err != nil {
			t.Fatal(err)
		}
		if len(byType) != 1 || byType[0].Count != 2 {
			t.Errorf("unexpected grouping %+v", byType)
		}
	})
}
