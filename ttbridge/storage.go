package main

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// Export snapshots live under DATA_DIR: json/<entity>.json holds the raw
// array exactly as Greenhouse returned it, csv/<entity>.csv holds a flat
// rendering for the entities that have one.

var dataDir string

type SnapshotInfo struct {
	Entity string   `json:"entity"`
	Count  int      `json:"count"`
	Files  []string `json:"files"`
}

func initStorage() {
	dataDir = os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	for _, sub := range []string{"json", "csv"} {
		if err := os.MkdirAll(filepath.Join(dataDir, sub), 0o755); err != nil {
			panic("💥 DATA DIR CREATE FAILED: " + err.Error())
		}
	}
}

func snapshotJSONPath(entity string) string {
	return filepath.Join(dataDir, "json", entity+".json")
}

func snapshotCSVPath(entity string) string {
	return filepath.Join(dataDir, "csv", entity+".csv")
}

func saveEntitySnapshot(entity string, raw []byte, count int) (SnapshotInfo, error) {
	info := SnapshotInfo{Entity: entity, Count: count}

	jsonPath := snapshotJSONPath(entity)
	if err := ioutil.WriteFile(jsonPath, raw, 0o644); err != nil {
		return info, err
	}
	info.Files = append(info.Files, jsonPath)

	return info, nil
}

// saveEntityCSV writes the typed slice next to the JSON snapshot. in must be
// a pointer to a slice with csv tags.
func saveEntityCSV(entity string, in interface{}) (string, error) {
	csvPath := snapshotCSVPath(entity)

	f, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := gocsv.MarshalFile(in, f); err != nil {
		return "", err
	}

	return csvPath, nil
}

func loadEntitySnapshot(entity string) ([]byte, error) {
	raw, err := ioutil.ReadFile(snapshotJSONPath(entity))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("no snapshot for " + entity + ", run the export first")
		}
		return nil, err
	}

	return raw, nil
}

func loadSnapshotInto(entity string, out interface{}) error {
	raw, err := loadEntitySnapshot(entity)
	if err != nil {
		return err
	}

	return json.Unmarshal(raw, out)
}

func snapshotCount(entity string) (int, error) {
	raw, err := loadEntitySnapshot(entity)
	if err != nil {
		return 0, err
	}

	items := []json.RawMessage{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return 0, err
	}

	return len(items), nil
}

// archiveSnapshots copies every JSON snapshot to the archive bucket.
func archiveSnapshots() error {
	entries, err := ioutil.ReadDir(filepath.Join(dataDir, "json"))
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		raw, err := ioutil.ReadFile(filepath.Join(dataDir, "json", entry.Name()))
		if err != nil {
			ErrorLog.Println("archive read err: ", err)
			continue
		}

		if err := bytesToGCP(passwords.SNAPSHOT_BUCKET_NAME, "snapshots/"+entry.Name(), raw, false); err != nil {
			ErrorLog.Println("archive upload err: ", err)
			return err
		}
	}

	InfoLog.Println("archived snapshots to ", passwords.SNAPSHOT_BUCKET_NAME)

	return nil
}
