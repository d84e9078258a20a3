package report

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"go-gudang-kelurahan/internal/model"
)

func TestGenerateProducesFiveSheets(t *testing.T) {
	snap := &Snapshot{
		Items: []model.Item{{Name: "Kursi", Stock: 8, Unit: "Pcs"}},
		Inbound: []model.InboundTransaction{{
			Quantity: 8,
			Date:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			Source:   "Stok Awal",
			Item:     model.Item{Name: "Kursi"},
		}},
		Loans: []model.Loan{{
			BorrowerName: "Budi",
			Quantity:     2,
			Status:       model.LoanNotReturned,
			Item:         model.Item{Name: "Kursi"},
		}},
	}

	artifact, err := NewCSVGenerator().Generate(snap)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if artifact.MIME != "application/zip" {
		t.Fatalf("mime = %q", artifact.MIME)
	}

	zr, err := zip.NewReader(bytes.NewReader(artifact.Content), int64(len(artifact.Content)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}

	want := map[string]bool{
		"sisa_stok_akhir.csv":    false,
		"riwayat_masuk.csv":      false,
		"riwayat_keluar.csv":     false,
		"riwayat_peminjaman.csv": false,
		"riwayat_aktivitas.csv":  false,
	}
	for _, f := range zr.File {
		if _, ok := want[f.Name]; !ok {
			t.Fatalf("unexpected sheet %q", f.Name)
		}
		want[f.Name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("sheet %q missing", name)
		}
	}

	// Spot-check the stock sheet content.
	for _, f := range zr.File {
		if f.Name != "sisa_stok_akhir.csv" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open sheet: %v", err)
		}
		records, err := csv.NewReader(rc).ReadAll()
		rc.Close()
		if err != nil && err != io.EOF {
			t.Fatalf("read csv: %v", err)
		}
		if len(records) != 2 || records[1][0] != "Kursi" || records[1][1] != "8" {
			t.Fatalf("stock sheet = %v", records)
		}
	}
}
