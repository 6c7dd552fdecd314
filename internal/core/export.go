package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Export file names, without extension.
const (
	TaskExportName    = "Task List"
	StudentExportName = "Campus Details"
)

func writeCSV(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func (t Task) csvRecord() []string {
	return []string{
		t.ID,
		t.Hashtag,
		t.Title,
		t.Description,
		strconv.Itoa(t.Karma),
		strconv.Itoa(t.UsageCount),
		strconv.FormatBool(t.VariableKarma),
		strconv.FormatBool(t.Active),
		t.Channel,
		t.Type,
		deref(t.LevelID),
		deref(t.IGID),
		deref(t.OrgID),
		t.CreatedBy,
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedBy,
		t.UpdatedAt.Format(time.RFC3339),
	}
}

func (st Student) csvRecord() []string {
	return []string{
		st.UserID,
		st.MuID,
		st.FirstName,
		st.LastName,
		st.Email,
		strconv.Itoa(st.Karma),
		st.Level,
		st.JoinedAt.Format(time.RFC3339),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
