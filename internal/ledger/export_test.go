package ledger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/m3rciful/intakebot/internal/order"
)

func TestExportXLSX(t *testing.T) {
	touched := sampleOrder(2, "b.com", "c.com")
	touched.AdminNotification.Touched = true
	orders := []order.Order{sampleOrder(1, "a.com"), touched}

	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, orders))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "a.com", rows[1][2])
	assert.Equal(t, "b.com\nc.com", rows[2][2])
	assert.Equal(t, "TRUE", rows[2][5])
}
