package service

import "go-gudang-kelurahan/internal/apperr"

// Enumerated sources for inbound rows and reasons for outbound rows. The
// stored column is the derived human-readable label, matching what the
// archival report prints.
const (
	SourcePurchase = "Pembelian"
	SourceGift     = "Pemberian"
	SourceOther    = "Lainnya"

	ReasonUsedUp  = "Dipakai Habis"
	ReasonGiven   = "Diberikan"
	ReasonDamaged = "Rusak"
	ReasonExpired = "Kedaluwarsa"
	ReasonOther   = "Lainnya"
)

type SourceInfo struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

type ReasonInfo struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// deriveSource turns the enumerated source into its stored label. Detail is
// mandatory for Pemberian and Lainnya; anything unrecognized falls back to
// the context default ("Stok Awal" on create, "Penambahan Stok" on add).
func deriveSource(info SourceInfo, fallback string) (string, error) {
	switch info.Kind {
	case SourcePurchase:
		return SourcePurchase, nil
	case SourceGift:
		if info.Detail == "" {
			return "", apperr.Field("source_detail", "Keterangan Pemberian wajib diisi!")
		}
		return "Pemberian dari " + info.Detail, nil
	case SourceOther:
		if info.Detail == "" {
			return "", apperr.Field("source_detail", "Keterangan Lainnya wajib diisi!")
		}
		return info.Detail, nil
	default:
		return fallback, nil
	}
}

// deriveReason turns the enumerated outbound reason into its stored label.
// Detail is mandatory for Dipakai Habis, Diberikan and Lainnya.
func deriveReason(info ReasonInfo) (string, error) {
	switch info.Kind {
	case ReasonUsedUp:
		if info.Detail == "" {
			return "", apperr.Field("reason_detail", "Keterangan Dipakai Habis wajib diisi!")
		}
		return "Dipakai untuk " + info.Detail, nil
	case ReasonGiven:
		if info.Detail == "" {
			return "", apperr.Field("reason_detail", "Keterangan Diberikan wajib diisi!")
		}
		return "Diberikan kepada " + info.Detail, nil
	case ReasonDamaged:
		return ReasonDamaged, nil
	case ReasonExpired:
		return ReasonExpired, nil
	case ReasonOther:
		if info.Detail == "" {
			return "", apperr.Field("reason_detail", "Keterangan Lainnya wajib diisi!")
		}
		return info.Detail, nil
	case "":
		return "", apperr.Field("reason", "Keterangan wajib dipilih")
	default:
		return info.Kind, nil
	}
}
