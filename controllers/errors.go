package controllers

import "errors"

var (
	ErrEmptyItems        = errors.New("order harus punya minimal satu item")
	ErrInvalidDelivery   = errors.New("delivery type tidak dikenal")
	ErrInvalidPayment    = errors.New("payment method tidak dikenal")
	ErrInvalidStatus     = errors.New("production status tidak dikenal")
	ErrInvalidQuantity   = errors.New("quantity harus lebih besar dari 0")
	ErrOrderManagedTrx   = errors.New("transaksi bersumber order hanya bisa diubah lewat ordernya")
	ErrGatewayNotReady   = errors.New("payment gateway belum dikonfigurasi")
	ErrNumberExhausted   = errors.New("gagal mengalokasikan nomor order, coba lagi")
	ErrStreamUnsupported = errors.New("streaming tidak didukung oleh koneksi ini")
)
