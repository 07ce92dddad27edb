package service

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/Astemirdum/bookstore-service/bookstore/internal/model"
)

// ReceiptWriter stores a plain-text copy of every bill. A zero dir disables it.
type ReceiptWriter struct {
	dir string
}

func NewReceiptWriter(dir string) *ReceiptWriter {
	return &ReceiptWriter{dir: dir}
}

func (w *ReceiptWriter) Write(bill model.Bill) (string, error) {
	if w == nil || w.dir == "" {
		return "", nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "receipts dir")
	}
	name := fmt.Sprintf("bill_%d_%d.txt", bill.OrderID, bill.CreatedAt.Unix())
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, renderReceipt(bill), 0o644); err != nil {
		return "", errors.Wrap(err, "write receipt")
	}
	return path, nil
}

func renderReceipt(bill model.Bill) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Bookstore bill #%d (%s)\n", bill.OrderID, bill.BillUid)
	fmt.Fprintf(&buf, "Date: %s\n", bill.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&buf, "Cashier: %s\n\n", bill.Username)
	for _, item := range bill.Items {
		fmt.Fprintf(&buf, "%s x%d @ %.2f = %.2f\n", item.Title, item.SoldQuantity, item.UnitPrice, item.LineTotal())
	}
	fmt.Fprintf(&buf, "\nTotal: %.2f\n", bill.TotalAmount)
	return buf.Bytes()
}
