package entity

import "time"

// TestResults resultados de las cinco pruebas de laboratorio.
type TestResults struct {
	LogicalSerialMatch bool
	WiFi24GHz          bool
	WiFi5GHz           bool
	EthernetPort       bool
	LANPort            bool
}

// InspectionRecord resultado inmutable de una pasada de laboratorio sobre un equipo.
type InspectionRecord struct {
	ID          int64
	EquipmentID int64
	Results     TestResults
	Approved    bool
	Faults      []string
	Notes       string
	Technician  string
	Duration    time.Duration
	CreatedAt   time.Time
}

// Clone devuelve una copia profunda.
func (r *InspectionRecord) Clone() *InspectionRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Faults = append([]string(nil), r.Faults...)
	return &c
}
