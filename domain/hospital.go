package domain

// HospitalConfig holds facility details and invoice numbering settings.
type HospitalConfig struct {
	Name                string  `json:"name" yaml:"name"`
	Address             string  `json:"address" yaml:"address"`
	Phone               string  `json:"phone" yaml:"phone"`
	Email               string  `json:"email" yaml:"email"`
	Website             string  `json:"website" yaml:"website"`
	SocialMedia         string  `json:"socialMedia" yaml:"social_media"`
	Tagline             string  `json:"tagline" yaml:"tagline"`
	CurrencySymbol      string  `json:"currencySymbol" yaml:"currency_symbol"`
	TimeZone            string  `json:"timeZone" yaml:"time_zone"`
	DateFormat          string  `json:"dateFormat" yaml:"date_format"`
	AutoBackupEnabled   bool    `json:"autoBackupEnabled" yaml:"auto_backup_enabled"`
	LastAutoBackup      string  `json:"lastAutoBackup,omitempty" yaml:"-"`
	InvoiceIDPrefix     string  `json:"invoiceIdPrefix" yaml:"invoice_id_prefix"`
	InvoiceIDDateFormat string  `json:"invoiceIdDateFormat" yaml:"invoice_id_date_format"`
	InvoiceIDPadding    int     `json:"invoiceIdPadding" yaml:"invoice_id_padding"`
	InvoiceIDSeparator  string  `json:"invoiceIdSeparator" yaml:"invoice_id_separator"`
	TaxRate             float64 `json:"taxRate,omitempty" yaml:"tax_rate"`
}
