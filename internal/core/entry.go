package core

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var ErrNotesTooLong = errors.New("notes too long (max 2000 characters)")

// maxNotesLength counts characters, not bytes.
const maxNotesLength = 2000

// LedgerEntry is one calendar day of the ledger.
type LedgerEntry struct {
	Date                Date   `json:"date"`
	ExpectedIncome      Money  `json:"expectedIncome"`
	ExpectedExpenditure Money  `json:"expectedExpenditure"`
	HeldFund            Money  `json:"heldFund"` // stored for layout compatibility, never read by the aggregator
	CustomNotes         string `json:"customNotes"`
}

// BlankEntry returns the zero-valued entry written by provisioning.
func BlankEntry(d Date) LedgerEntry {
	return LedgerEntry{
		Date:                d,
		ExpectedIncome:      Zero,
		ExpectedExpenditure: Zero,
		HeldFund:            Zero,
	}
}

// NetIncome is income minus expenditure for the day.
func (e LedgerEntry) NetIncome() Money {
	return e.ExpectedIncome.Sub(e.ExpectedExpenditure)
}

func (e LedgerEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(e.CustomNotes) > maxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// DayEdit carries the three user-editable fields of a day.
type DayEdit struct {
	Income      Money
	Expenditure Money
	Notes       string
}

// NewDayEdit builds an edit from raw form text. Non-numeric amounts become zero.
func NewDayEdit(incomeText, expenditureText, notes string) DayEdit {
	return DayEdit{
		Income:      LenientAmount(incomeText),
		Expenditure: LenientAmount(expenditureText),
		Notes:       strings.TrimSpace(notes),
	}
}

func (e DayEdit) Validate() error {
	if utf8.RuneCountInString(e.Notes) > maxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}
