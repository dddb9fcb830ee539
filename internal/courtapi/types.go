package courtapi

import "encoding/json"

// Wire shapes for the court records API. The provider omits fields freely,
// so everything optional is a pointer and translation fills in fallbacks.

type pageEnvelope struct {
	Count    int               `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []json.RawMessage `json:"results"`
}

type opinionRecord struct {
	ID           int     `json:"id"`
	AbsoluteURL  *string `json:"absolute_url"`
	CaseName     *string `json:"case_name"`
	Court        *string `json:"court"`
	CourtID      *string `json:"court_id"`
	DateFiled    *string `json:"date_filed"`
	DocketID     *int    `json:"docket"`
	DocketNumber *string `json:"docket_number"`
	AuthorID     *int    `json:"author_id"`
	PlainText    *string `json:"plain_text"`
	Citations    []struct {
		Cite *string `json:"cite"`
	} `json:"citations"`
}

type docketRecord struct {
	ID           int     `json:"id"`
	CourtID      *string `json:"court_id"`
	CaseName     *string `json:"case_name"`
	DocketNumber *string `json:"docket_number"`
	DateFiled    *string `json:"date_filed"`
	AssignedToID *int    `json:"assigned_to_id"`
}

type personRecord struct {
	ID           int     `json:"id"`
	NameFirst    *string `json:"name_first"`
	NameMiddle   *string `json:"name_middle"`
	NameLast     *string `json:"name_last"`
	DateDOB      *string `json:"date_dob"`
	Gender       *string `json:"gender"`
	FJCID        *int    `json:"fjc_id"`
	Positions    []struct {
		CourtID      *string `json:"court_id"`
		PositionType *string `json:"position_type"`
		DateStart    *string `json:"date_start"`
		DateEnd      *string `json:"date_termination"`
	} `json:"positions"`
}

// Internal shapes handed to the sync routines.

type Opinion struct {
	ExternalID   int
	CaseName     string
	Court        string
	DateFiled    string
	DocketID     int
	DocketNumber string
	AuthorID     int
	PlainText    string
	Citations    []string
}

type Docket struct {
	ExternalID   int
	Court        string
	CaseName     string
	DocketNumber string
	DateFiled    string
	AssignedToID int
}

type Position struct {
	Court     string
	Title     string
	DateStart string
	DateEnd   string
}

type Judge struct {
	ExternalID int
	FullName   string
	BirthDate  string
	Gender     string
	FJCID      int
	Positions  []Position
}
