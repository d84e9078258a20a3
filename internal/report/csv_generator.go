package report

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
)

// CSVGenerator builds the archival report as a zip of five CSV sheets, one
// per ledger. The period-close flow only needs some artifact to attach; a
// spreadsheet layout is deliberately out of scope here.
type CSVGenerator struct{}

func NewCSVGenerator() *CSVGenerator { return &CSVGenerator{} }

const dateLayout = "02-01-2006"

func (g *CSVGenerator) Generate(s *Snapshot) (*Artifact, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	sheets := []struct {
		name   string
		header []string
		rows   func() [][]string
	}{
		{
			name:   "sisa_stok_akhir.csv",
			header: []string{"Nama Barang", "Stok", "Satuan"},
			rows: func() [][]string {
				out := make([][]string, 0, len(s.Items))
				for _, it := range s.Items {
					out = append(out, []string{it.Name, strconv.Itoa(it.Stock), it.Unit})
				}
				return out
			},
		},
		{
			name:   "riwayat_masuk.csv",
			header: []string{"Tanggal", "Barang", "Jumlah", "Sumber"},
			rows: func() [][]string {
				out := make([][]string, 0, len(s.Inbound))
				for _, in := range s.Inbound {
					out = append(out, []string{in.Date.Format(dateLayout), in.Item.Name, strconv.Itoa(in.Quantity), in.Source})
				}
				return out
			},
		},
		{
			name:   "riwayat_keluar.csv",
			header: []string{"Tanggal", "Barang", "Jumlah", "Keterangan"},
			rows: func() [][]string {
				out := make([][]string, 0, len(s.Outbound))
				for _, ob := range s.Outbound {
					out = append(out, []string{ob.Date.Format(dateLayout), ob.Item.Name, strconv.Itoa(ob.Quantity), ob.Reason})
				}
				return out
			},
		},
		{
			name:   "riwayat_peminjaman.csv",
			header: []string{"Peminjam", "Barang", "Jumlah", "Status"},
			rows: func() [][]string {
				out := make([][]string, 0, len(s.Loans))
				for _, ln := range s.Loans {
					out = append(out, []string{ln.BorrowerName, ln.Item.Name, strconv.Itoa(ln.Quantity), string(ln.Status)})
				}
				return out
			},
		},
		{
			name:   "riwayat_aktivitas.csv",
			header: []string{"Waktu", "User", "Aksi", "Data"},
			rows: func() [][]string {
				out := make([][]string, 0, len(s.Audit))
				for _, a := range s.Audit {
					user := "System"
					if a.User != nil {
						user = a.User.Name
					}
					out = append(out, []string{a.CreatedAt.Format(dateLayout + " 15:04"), user, a.Action, a.Subject})
				}
				return out
			},
		},
	}

	for _, sheet := range sheets {
		f, err := zw.Create(sheet.name)
		if err != nil {
			return nil, err
		}
		w := csv.NewWriter(f)
		if err := w.Write(sheet.header); err != nil {
			return nil, err
		}
		if err := w.WriteAll(sheet.rows()); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}

	return &Artifact{
		Filename: fmt.Sprintf("Arsip_Gudang_%d.zip", time.Now().Year()),
		MIME:     "application/zip",
		Content:  buf.Bytes(),
	}, nil
}
