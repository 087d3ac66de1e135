package main

import (
	"fmt"
	"io"

	"github.com/mikeohgml-jpg/coaching-portal/internal/domain"
	"gopkg.in/yaml.v3"
)

// clientRecord is the export format of one client.
type clientRecord struct {
	ID             string  `yaml:"id"`
	Name           string  `yaml:"name"`
	Address        string  `yaml:"address,omitempty"`
	Contact        string  `yaml:"contact,omitempty"`
	Email          string  `yaml:"email"`
	PackageType    string  `yaml:"package_type"`
	StartDate      string  `yaml:"start_date"`
	EndDate        string  `yaml:"end_date"`
	AmountPaid     float64 `yaml:"amount_paid"`
	PaymentMethod  string  `yaml:"payment_method"`
	ContractNumber string  `yaml:"contract_number"`
	InvoiceNumber  string  `yaml:"invoice_number"`
	CreatedAt      string  `yaml:"created_at,omitempty"`
	Notes          string  `yaml:"notes,omitempty"`
}

type exportFile struct {
	Clients []clientRecord `yaml:"clients"`
}

func encodeClients(w io.Writer, clients []domain.Client) error {
	file := exportFile{Clients: make([]clientRecord, 0, len(clients))}
	for _, c := range clients {
		file.Clients = append(file.Clients, clientRecord{
			ID:             c.ID,
			Name:           c.Name,
			Address:        c.Address,
			Contact:        c.Contact,
			Email:          c.Email,
			PackageType:    c.PackageType,
			StartDate:      c.StartDate,
			EndDate:        c.EndDate,
			AmountPaid:     c.AmountPaid,
			PaymentMethod:  c.PaymentMethod.String(),
			ContractNumber: c.ContractNumber,
			InvoiceNumber:  c.InvoiceNumber,
			CreatedAt:      c.CreatedAt,
			Notes:          c.Notes,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("failed to encode clients: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode clients: %w", err)
	}
	return nil
}

func decodeClients(r io.Reader) ([]domain.Client, error) {
	var file exportFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode clients: %w", err)
	}

	clients := make([]domain.Client, 0, len(file.Clients))
	for i, rec := range file.Clients {
		method, err := domain.ParsePaymentMethod(rec.PaymentMethod)
		if err != nil {
			return nil, fmt.Errorf("client %d (%s): %w", i+1, rec.Name, err)
		}
		if rec.Name == "" || rec.Email == "" {
			return nil, fmt.Errorf("client %d: name and email are required", i+1)
		}
		clients = append(clients, domain.Client{
			ID:             rec.ID,
			Name:           rec.Name,
			Address:        rec.Address,
			Contact:        rec.Contact,
			Email:          rec.Email,
			PackageType:    rec.PackageType,
			StartDate:      rec.StartDate,
			EndDate:        rec.EndDate,
			AmountPaid:     rec.AmountPaid,
			PaymentMethod:  method,
			ContractNumber: rec.ContractNumber,
			InvoiceNumber:  rec.InvoiceNumber,
			CreatedAt:      rec.CreatedAt,
			Notes:          rec.Notes,
		})
	}
	return clients, nil
}
