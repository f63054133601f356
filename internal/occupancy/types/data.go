package types

import "time"

// Column names of the snapshot exports and of the two output files.
const (
	ColUnit   = "Unidade"
	ColGroup  = "Grupo"
	ColStatus = "Status"
	ColPlate  = "Placa"
	ColNotes  = "Observacoes"
	ColOrigin = "Nome Da Origem"

	ColOccupancy = "Ocupação (%)"
	ColRented    = "Alugados"
	ColTotal     = "Qtd. Total"
)

// RequiredColumns must be present in every snapshot file.
var RequiredColumns = []string{ColUnit, ColGroup, ColStatus, ColPlate}

const (
	UnitRacRec     = "Rac Rec"
	UnitRacFor     = "Rac For"
	UnitTotalGeral = "Total Geral"
)

// TrackedUnits are the business units kept at ingestion, in report order.
var TrackedUnits = []string{UnitRacRec, UnitRacFor}

const (
	ClassBasico   = "Básico"
	ClassEspecial = "Especial"
)

// Classes lists the group classes in report order.
var Classes = []string{ClassBasico, ClassEspecial}

const (
	StatusRented    = "Alugado"
	StatusAvailable = "Disponível"
)

const (
	ConsolidatedFileName = "base_tratada.csv"
	SummaryFileName      = "resumo_ocupacao.csv"

	// OriginLayout is the layout of the Nome Da Origem column.
	OriginLayout = "02/01/2006"
)

// SnapshotRecord is one vehicle row of a daily snapshot after ingestion.
type SnapshotRecord struct {
	Unit   string
	Group  string
	Status string
	Plate  string
	Origin string
	Extra  map[string]string
}

// IsRented reports whether the record carries the Alugado status.
func (r SnapshotRecord) IsRented() bool {
	return r.Status == StatusRented
}

// SummaryRow is one line of the occupancy summary.
type SummaryRow struct {
	Unit             string  `json:"unit" db:"unit"`
	GroupClass       string  `json:"group_class" db:"group_class"`
	OccupancyPercent float64 `json:"occupancy_percent" db:"occupancy_percent"`
	Rented           int     `json:"rented" db:"rented"`
	Total            int     `json:"total" db:"total"`
}

// SnapshotDate is the date embedded in a snapshot filename. The zero value
// means the filename carried no DD-MM-YYYY token.
type SnapshotDate struct {
	Label string
	Time  time.Time
	Valid bool
	Found bool
}
