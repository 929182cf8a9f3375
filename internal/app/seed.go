package app

import (
	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
	"github.com/acsaicontentstudio-collab/digistore-app/internal/usecase"
)

func seedID(collection, key string) string {
	id, _ := domain.NormalizeID(collection, "seed-"+key)
	return id
}

func price(v int64) *int64 { return &v }

// DemoSeed is the catalog a fresh install starts with. Ids are derived from
// fixed keys so they stay stable until the first write persists them.
func DemoSeed() usecase.Seed {
	return usecase.Seed{
		Settings: domain.StoreSettings{
			StoreName:   "Digistore",
			Address:     "Jakarta, Indonesia",
			WhatsApp:    "081234567890",
			Email:       "halo@digistore.id",
			Description: "Produk digital siap pakai: e-book, template, dan kelas online.",
		},
		Products: []domain.Product{
			{ID: seedID(domain.CollectionProducts, "ebook-bisnis-online"), Name: "E-book Bisnis Online", Category: "ebook", Description: "Panduan memulai bisnis online dari nol.", Price: 249000, IsPopular: true},
			{ID: seedID(domain.CollectionProducts, "template-cv"), Name: "Template CV Profesional", Category: "template", Description: "20 template CV siap edit.", Price: 99000, DiscountPrice: price(79000)},
			{ID: seedID(domain.CollectionProducts, "kelas-desain"), Name: "Kelas Desain Canva", Category: "course", Description: "Video kelas desain untuk pemula.", Price: 350000, DiscountPrice: price(299000), IsPopular: true},
			{ID: seedID(domain.CollectionProducts, "preset-foto"), Name: "Preset Foto Lightroom", Category: "preset", Description: "50 preset untuk foto produk.", Price: 75000},
		},
		PaymentMethods: []domain.PaymentMethod{
			{ID: seedID(domain.CollectionPaymentMethods, "bca"), Type: domain.PaymentBank, Name: "Transfer BCA", AccountNumber: "1234567890", AccountName: "Digistore", IsActive: true},
			{ID: seedID(domain.CollectionPaymentMethods, "dana"), Type: domain.PaymentEWallet, Name: "DANA", AccountNumber: "081234567890", AccountName: "Digistore", IsActive: true},
			{ID: seedID(domain.CollectionPaymentMethods, "qris"), Type: domain.PaymentTripay, Name: "QRIS Otomatis", AccountNumber: "QRIS", IsActive: false},
		},
		Vouchers: []domain.Voucher{
			{ID: seedID(domain.CollectionVouchers, "hemat10"), Code: "HEMAT10", Type: domain.VoucherPercent, Value: 10, IsActive: true},
			{ID: seedID(domain.CollectionVouchers, "potong20"), Code: "POTONG20", Type: domain.VoucherFixed, Value: 20000, IsActive: true},
		},
		Affiliates: []domain.Affiliate{
			{ID: seedID(domain.CollectionAffiliates, "budi"), Name: "Budi", Code: "BUDI", Password: "budi123", CommissionRate: 10, IsActive: true},
		},
	}
}
