package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/model"
)

const attributeDateFormat = "2006-01-02"

// Companies reads the company attribute tables joined per borrower. Owner
// age and company age are measured from the current time, not from loan
// creation, and the credit limit carries no history; both are known
// approximations carried over from the warehouse.
func (s *SQLiteStorage) Companies(ctx context.Context) ([]model.Company, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := s.checkColumns(ctx, "cars_companies", []string{
		"id", "companyname", "companyregistrationnumber", "countrycode", "foundingdate",
	}); err != nil {
		return nil, err
	}
	if err := s.checkColumns(ctx, "plafond_companies", []string{
		"id", "ownerpersonaldata_birthdate",
	}); err != nil {
		return nil, err
	}
	if err := s.checkColumns(ctx, "plafond_companyplafondledger", []string{
		"companyid", "grantedamount_amount",
	}); err != nil {
		return nil, err
	}
	if err := s.checkColumns(ctx, "plafond_plafonds", []string{
		"companyid", "commercialpartner",
	}); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.companyname, c.companyregistrationnumber, c.countrycode,
		       c.foundingdate, o.ownerpersonaldata_birthdate,
		       l.grantedamount_amount, p.commercialpartner
		FROM cars_companies c
		JOIN plafond_companies o ON o.id = c.id
		JOIN plafond_companyplafondledger l ON l.companyid = c.id
		JOIN plafond_plafonds p ON p.companyid = c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query company tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	now := time.Now().UTC()

	var result []model.Company
	skipped := 0
	for rows.Next() {
		var (
			company      model.Company
			name         sql.NullString
			registration sql.NullString
			country      sql.NullString
			founding     sql.NullString
			birthdate    sql.NullString
			creditLimit  sql.NullInt64
			partner      sql.NullString
		)
		if err := rows.Scan(&company.BorrowerID, &name, &registration, &country,
			&founding, &birthdate, &creditLimit, &partner); err != nil {
			return nil, fmt.Errorf("failed to scan company row: %w", err)
		}

		// Companies without a parseable founding date are excluded,
		// matching the warehouse extraction.
		foundingDate, err := time.ParseInLocation(attributeDateFormat, cleanAttr(founding), time.UTC)
		if err != nil {
			skipped++
			continue
		}

		company.CompanyName = cleanAttr(name)
		company.RegistrationNumber = cleanAttr(registration)
		company.CountryCode = cleanAttr(country)
		company.CommercialPartner = cleanAttr(partner)
		company.CreditLimit = int(creditLimit.Int64)
		company.DaysSinceFounded = model.DaysBetween(foundingDate, now)

		if birth, err := time.ParseInLocation(attributeDateFormat, cleanAttr(birthdate), time.UTC); err == nil {
			company.OwnerAgeYears = model.DaysBetween(birth, now) / 365
		}

		result = append(result, company)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read company rows: %w", err)
	}
	if skipped > 0 {
		slog.Warn("Skipped companies without a parseable founding date", "count", skipped)
	}
	return result, nil
}

// Cars reads the static loan, car and collateral attributes joined per loan.
// The car's age is not computed: there is no reliable key to the car
// registry, another known gap carried over from the warehouse.
func (s *SQLiteStorage) Cars(ctx context.Context) ([]model.Car, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := s.checkColumns(ctx, "cars_carloans", []string{
		"id", "borrowerid", "collateralid", "principal_amount", "principal_currency",
	}); err != nil {
		return nil, err
	}
	if err := s.checkColumns(ctx, "car_loan_status", []string{
		"carloan_id", "car_make", "car_model", "car_transmission_type",
	}); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT cl.id, cl.borrowerid, cl.collateralid,
		       cl.principal_amount, cl.principal_currency,
		       st.car_make, st.car_model, st.car_transmission_type,
		       dd.carsource_companyinfo_companytype
		FROM cars_carloans cl
		LEFT JOIN car_loan_status st ON st.carloan_id = cl.id
		LEFT JOIN cars_carcollateralduediligences dd ON dd.collateralid = cl.collateralid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query car attribute tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []model.Car
	for rows.Next() {
		var (
			car          model.Car
			collateralID sql.NullString
			amount       sql.NullFloat64
			currency     sql.NullString
			carMake      sql.NullString
			carModel     sql.NullString
			transmission sql.NullString
			carSource    sql.NullInt64
		)
		if err := rows.Scan(&car.CarloanID, &car.BorrowerID, &collateralID,
			&amount, &currency, &carMake, &carModel, &transmission, &carSource); err != nil {
			return nil, fmt.Errorf("failed to scan car attribute row: %w", err)
		}
		car.CollateralID = collateralID.String
		car.LoanAmount = amount.Float64
		car.Currency = currency.String
		car.CarMake = carMake.String
		car.CarModel = carModel.String
		car.CarTransmissionType = transmission.String
		car.CarSource = int(carSource.Int64)
		result = append(result, car)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read car attribute rows: %w", err)
	}
	return result, nil
}

// cleanAttr trims placeholder dashes the warehouse uses for missing values.
func cleanAttr(s sql.NullString) string {
	if !s.Valid || s.String == "-" {
		return ""
	}
	return s.String
}
