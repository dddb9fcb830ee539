package courtapi

import "strings"

// Translation from wire records to internal shapes. These are pure: missing
// optional fields become zero values or "unknown", never a panic.

const unknown = "unknown"

func strOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func intOr(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func translateOpinion(rec opinionRecord) Opinion {
	op := Opinion{
		ExternalID:   rec.ID,
		CaseName:     strOr(rec.CaseName, unknown),
		Court:        strOr(rec.Court, strOr(rec.CourtID, unknown)),
		DateFiled:    strOr(rec.DateFiled, ""),
		DocketID:     intOr(rec.DocketID),
		DocketNumber: strOr(rec.DocketNumber, ""),
		AuthorID:     intOr(rec.AuthorID),
		PlainText:    strOr(rec.PlainText, ""),
	}
	for _, c := range rec.Citations {
		if c.Cite != nil && *c.Cite != "" {
			op.Citations = append(op.Citations, *c.Cite)
		}
	}
	return op
}

func translateDocket(rec docketRecord) Docket {
	return Docket{
		ExternalID:   rec.ID,
		Court:        strOr(rec.CourtID, unknown),
		CaseName:     strOr(rec.CaseName, unknown),
		DocketNumber: strOr(rec.DocketNumber, ""),
		DateFiled:    strOr(rec.DateFiled, ""),
		AssignedToID: intOr(rec.AssignedToID),
	}
}

func translatePerson(rec personRecord) Judge {
	parts := []string{}
	for _, p := range []*string{rec.NameFirst, rec.NameMiddle, rec.NameLast} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	name := strings.Join(parts, " ")
	if name == "" {
		name = unknown
	}

	judge := Judge{
		ExternalID: rec.ID,
		FullName:   name,
		BirthDate:  strOr(rec.DateDOB, ""),
		Gender:     strOr(rec.Gender, unknown),
		FJCID:      intOr(rec.FJCID),
	}
	for _, pos := range rec.Positions {
		judge.Positions = append(judge.Positions, Position{
			Court:     strOr(pos.CourtID, unknown),
			Title:     strOr(pos.PositionType, unknown),
			DateStart: strOr(pos.DateStart, ""),
			DateEnd:   strOr(pos.DateEnd, ""),
		})
	}
	return judge
}
