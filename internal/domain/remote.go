package domain

// Row types mirror the remote table columns. Nullable columns are pointers.

const SettingsRowID = 1

type ProductRow struct {
	ID            string  `gorm:"column:id;type:uuid;primaryKey"`
	Name          string  `gorm:"column:name"`
	Category      string  `gorm:"column:category"`
	Description   *string `gorm:"column:description"`
	Price         int64   `gorm:"column:price"`
	DiscountPrice *int64  `gorm:"column:discount_price"`
	Image         *string `gorm:"column:image"`
	FileURL       *string `gorm:"column:file_url"`
	IsPopular     *bool   `gorm:"column:is_popular"`
}

func (ProductRow) TableName() string { return "products" }

type VoucherRow struct {
	ID       string  `gorm:"column:id;type:uuid;primaryKey"`
	Code     string  `gorm:"column:code"`
	Type     string  `gorm:"column:type"`
	Value    float64 `gorm:"column:value"`
	IsActive *bool   `gorm:"column:is_active"`
}

func (VoucherRow) TableName() string { return "vouchers" }

type AffiliateRow struct {
	ID             string  `gorm:"column:id;type:uuid;primaryKey"`
	Name           string  `gorm:"column:name"`
	Code           string  `gorm:"column:code"`
	Password       string  `gorm:"column:password"`
	CommissionRate float64 `gorm:"column:commission_rate"`
	TotalEarnings  int64   `gorm:"column:total_earnings"`
	BankDetails    *string `gorm:"column:bank_details"`
	IsActive       *bool   `gorm:"column:is_active"`
}

func (AffiliateRow) TableName() string { return "affiliates" }

type SettingsRow struct {
	ID                 int     `gorm:"column:id;primaryKey"`
	StoreName          string  `gorm:"column:store_name"`
	Address            *string `gorm:"column:address"`
	WhatsApp           *string `gorm:"column:whatsapp"`
	Email              *string `gorm:"column:email"`
	Description        *string `gorm:"column:description"`
	LogoURL            *string `gorm:"column:logo_url"`
	TripayAPIKey       *string `gorm:"column:tripay_api_key"`
	TripayPrivateKey   *string `gorm:"column:tripay_private_key"`
	TripayMerchantCode *string `gorm:"column:tripay_merchant_code"`
}

func (SettingsRow) TableName() string { return "store_settings" }

type PaymentMethodRow struct {
	ID            string  `gorm:"column:id;type:uuid;primaryKey"`
	Type          string  `gorm:"column:type"`
	Name          string  `gorm:"column:name"`
	AccountNumber *string `gorm:"column:account_number"`
	AccountName   *string `gorm:"column:account_name"`
	Description   *string `gorm:"column:description"`
	Logo          *string `gorm:"column:logo"`
	IsActive      *bool   `gorm:"column:is_active"`
}

func (PaymentMethodRow) TableName() string { return "payment_methods" }
