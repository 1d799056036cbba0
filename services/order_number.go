package services

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/models"
	"github.com/yeremiapane/bakery-app/utils"
)

// OrderNumberAllocator mengalokasikan nomor order DD-MM-NN. Counter NN
// di-scope per bulan kalender (bukan per hari) dari seluruh nomor order
// yang segmen bulannya sama.
//
// Alokasi adalah read-then-write, jadi harus diserialisasi: lock per
// bulan menahan request concurrent di proses ini, unique index di kolom
// order_number plus retry di pemanggil menahan race antar proses.
type OrderNumberAllocator struct {
	DB *gorm.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewOrderNumberAllocator(db *gorm.DB) *OrderNumberAllocator {
	return &OrderNumberAllocator{
		DB:    db,
		locks: make(map[string]*sync.Mutex),
	}
}

// monthLock -> satu mutex per segmen bulan
func (a *OrderNumberAllocator) monthLock(month string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	lock, exists := a.locks[month]
	if !exists {
		lock = &sync.Mutex{}
		a.locks[month] = lock
	}
	return lock
}

// Next mengembalikan nomor order berikutnya untuk tanggal pengiriman.
// Nomor malformed (bukan tiga segmen, atau counter non-numerik) diabaikan,
// tidak ikut dihitung.
func (a *OrderNumberAllocator) Next(deliveryDate time.Time) (string, error) {
	day := utils.DaySegment(deliveryDate)
	month := utils.MonthSegment(deliveryDate)

	lock := a.monthLock(month)
	lock.Lock()
	defer lock.Unlock()

	// Ambil semua nomor order di bulan target (hari di-wildcard)
	var numbers []string
	if err := a.DB.Model(&models.Order{}).
		Where("order_number LIKE ?", "__-"+month+"-%").
		Pluck("order_number", &numbers).Error; err != nil {
		return "", err
	}

	// Cari maksimum counter secara NUMERIK. Perbandingan string salah
	// begitu satu bulan lewat sembilan order ("9" > "10" sebagai string).
	maxCounter := 0
	for _, number := range numbers {
		parts := strings.Split(number, "-")
		if len(parts) != 3 {
			continue
		}
		counter, err := strconv.Atoi(parts[2])
		if err != nil {
			continue
		}
		if counter > maxCounter {
			maxCounter = counter
		}
	}

	return fmt.Sprintf("%s-%s-%02d", day, month, maxCounter+1), nil
}

// IsDuplicateNumber -> deteksi pelanggaran unique index order_number
// supaya pemanggil bisa retry alokasi
func IsDuplicateNumber(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || // MySQL
		strings.Contains(msg, "UNIQUE constraint failed") // SQLite
}
