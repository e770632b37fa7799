package model

import "time"

// PracticeRegister is the commission-facing register of practices over a
// period, grouped by status for the xlsx export.
type PracticeRegister struct {
	PeriodStart    time.Time
	PeriodEnd      time.Time
	TotalPractices int
	TotalGross     float64
	Groups         []RegisterGroup
}

type RegisterGroup struct {
	Status    PracticeStatus
	Practices []Practice
}

// QuoteDocument is the printable payment summary for a practice whose
// breakdown has been frozen.
type QuoteDocument struct {
	Practice     Practice
	ContractType ContractType
}
