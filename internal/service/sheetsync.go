package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"cloudtouch-gate/internal/model"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetSyncService mirrors access records into a Google Sheet so
// non-technical admins can read the entitlement list. Export is best
// effort; the sheet is never the source of truth.
type SheetSyncService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewSheetSyncService(enableSync bool, credentialPath, spreadsheetID, sheetName string) (*SheetSyncService, error) {
	if !enableSync {
		return nil, nil
	}

	ctx := context.Background()

	b, err := os.ReadFile(credentialPath)
	if err != nil {
		return nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("loading sheet credentials: %v", err)
	}

	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, err
	}

	return &SheetSyncService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func recordRow(rec *model.AccessRecord) []interface{} {
	return []interface{}{
		rec.UserID,
		rec.AccessType,
		rec.GrantedAt.Format(time.RFC3339),
		rec.GrantedBy,
		rec.AllowedIP,
		rec.DownloadLink,
	}
}

// SyncRecord updates the record's row in the sheet, appending if the
// user has no row yet. A nil receiver (sync disabled) is a no-op.
func (s *SheetSyncService) SyncRecord(rec *model.AccessRecord) error {
	if s == nil {
		return nil
	}

	rangeToSearch := fmt.Sprintf("%s!A2:A", s.sheetName)
	keyResp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, rangeToSearch).Do()
	if err != nil {
		return fmt.Errorf("reading sheet keys: %v", err)
	}

	rowIndex := 0
	for i, row := range keyResp.Values {
		if len(row) > 0 && row[0] == rec.UserID {
			rowIndex = i + 2 // rows start at A2
			break
		}
	}

	values := [][]interface{}{recordRow(rec)}
	if rowIndex > 0 {
		rangeData := fmt.Sprintf("%s!A%d:F%d", s.sheetName, rowIndex, rowIndex)
		_, err = s.service.Spreadsheets.Values.Update(
			s.spreadsheetID,
			rangeData,
			&sheets.ValueRange{Values: values},
		).ValueInputOption("USER_ENTERED").Do()
	} else {
		_, err = s.service.Spreadsheets.Values.Append(
			s.spreadsheetID,
			s.sheetName+"!A2:F",
			&sheets.ValueRange{Values: values},
		).ValueInputOption("USER_ENTERED").Do()
	}
	if err != nil {
		return fmt.Errorf("writing sheet row: %v", err)
	}

	log.Printf("synced access record %s to sheet", rec.UserID)
	return nil
}

// ExportAll rewrites the sheet body from the full record listing.
func (s *SheetSyncService) ExportAll(records map[string]model.AccessRecord) error {
	if s == nil {
		return nil
	}

	// Clear the body first so revoked users disappear from the sheet.
	clearRange := s.sheetName + "!A2:F"
	if _, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Do(); err != nil {
		return fmt.Errorf("clearing sheet: %v", err)
	}

	var values [][]interface{}
	for _, rec := range records {
		values = append(values, recordRow(&rec))
	}
	if len(values) == 0 {
		return nil
	}

	_, err := s.service.Spreadsheets.Values.Append(
		s.spreadsheetID,
		clearRange,
		&sheets.ValueRange{Values: values},
	).ValueInputOption("USER_ENTERED").Do()
	if err != nil {
		log.Printf("failed to export access records: %v", err)
		return err
	}
	return nil
}
