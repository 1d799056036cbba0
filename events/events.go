package events

import (
	"time"
)

// Event types
const (
	EventConnected    = "connected"
	EventNewOrder     = "new_order"
	EventStatusUpdate = "status_update"
	EventNotesUpdate  = "notes_update"
	EventItemAdded    = "item_added"
	EventItemDeleted  = "item_deleted"
)

// Message -> satu frame event untuk semua device produksi.
// Timestamp diisi saat broadcast, bukan saat mutasi di database.
type Message struct {
	Event       string      `json:"event"`
	OrderID     uint        `json:"order_id,omitempty"`
	ItemID      uint        `json:"item_id,omitempty"`
	OrderNumber string      `json:"order_number,omitempty"`
	ClientID    string      `json:"client_id,omitempty"` // hanya untuk handshake
	Timestamp   time.Time   `json:"timestamp"`
	Data        interface{} `json:"data,omitempty"`
}

// StatusChange -> payload event status_update (status lama dan baru)
type StatusChange struct {
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// NewOrderMessage -> event order baru
func NewOrderMessage(orderID uint, orderNumber string, data interface{}) Message {
	return Message{
		Event:       EventNewOrder,
		OrderID:     orderID,
		OrderNumber: orderNumber,
		Data:        data,
	}
}

// StatusUpdateMessage -> event perubahan status item
func StatusUpdateMessage(orderID, itemID uint, orderNumber, oldStatus, newStatus string) Message {
	return Message{
		Event:       EventStatusUpdate,
		OrderID:     orderID,
		ItemID:      itemID,
		OrderNumber: orderNumber,
		Data:        StatusChange{OldStatus: oldStatus, NewStatus: newStatus},
	}
}

// NotesUpdateMessage -> event perubahan catatan item
func NotesUpdateMessage(orderID, itemID uint, orderNumber, notes string) Message {
	return Message{
		Event:       EventNotesUpdate,
		OrderID:     orderID,
		ItemID:      itemID,
		OrderNumber: orderNumber,
		Data:        map[string]string{"notes": notes},
	}
}

// ItemAddedMessage -> event item baru ditambahkan ke order
func ItemAddedMessage(orderID, itemID uint, orderNumber string, data interface{}) Message {
	return Message{
		Event:       EventItemAdded,
		OrderID:     orderID,
		ItemID:      itemID,
		OrderNumber: orderNumber,
		Data:        data,
	}
}

// ItemDeletedMessage -> event item dihapus (orderDeleted=true jika ikut
// menghapus order karena item terakhir)
func ItemDeletedMessage(orderID, itemID uint, orderNumber string, orderDeleted bool) Message {
	return Message{
		Event:       EventItemDeleted,
		OrderID:     orderID,
		ItemID:      itemID,
		OrderNumber: orderNumber,
		Data:        map[string]bool{"order_deleted": orderDeleted},
	}
}
