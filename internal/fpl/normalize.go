package fpl

import (
	"context"
	"strconv"

	"github.com/fantasy-tools/fpl-optimizer/internal/catalog"
)

// FetchRecords fetches and normalizes the candidate pool: team and position
// IDs become names, now_cost (tenths of a million) becomes a price in
// millions, and the form string becomes a number. Malformed rows surface as
// catalog errors rather than being dropped.
func (c *Client) FetchRecords(ctx context.Context) ([]catalog.Record, error) {
	body, err := c.fetchBootstrap(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := decodeBootstrap(body)
	if err != nil {
		return nil, err
	}
	return normalize(payload)
}

func normalize(payload *bootstrapResponse) ([]catalog.Record, error) {
	teamNames := make(map[int]string, len(payload.Teams))
	for _, t := range payload.Teams {
		teamNames[t.ID] = t.Name
	}
	positionNames := make(map[int]string, len(payload.ElementTypes))
	for _, et := range payload.ElementTypes {
		positionNames[et.ID] = et.SingularName
	}

	records := make([]catalog.Record, 0, len(payload.Elements))
	for _, e := range payload.Elements {
		club, ok := teamNames[e.Team]
		if !ok {
			return nil, &catalog.DataFormatError{RecordID: e.ID, Field: "team", Reason: "references an unknown team id " + strconv.Itoa(e.Team)}
		}
		position, ok := positionNames[e.ElementType]
		if !ok {
			return nil, &catalog.DataFormatError{RecordID: e.ID, Field: "element_type", Reason: "references an unknown element type " + strconv.Itoa(e.ElementType)}
		}
		// The API serves form as a string such as "4.2".
		form, err := strconv.ParseFloat(e.Form, 64)
		if err != nil {
			return nil, &catalog.DataFormatError{RecordID: e.ID, Field: "form", Reason: "is not numeric: " + strconv.Quote(e.Form)}
		}

		records = append(records, catalog.Record{
			ID:          e.ID,
			Name:        e.FirstName + " " + e.SecondName,
			Club:        club,
			Position:    position,
			Price:       float64(e.NowCost) / 10.0,
			TotalPoints: float64(e.TotalPoints),
			Form:        form,
		})
	}
	return records, nil
}
