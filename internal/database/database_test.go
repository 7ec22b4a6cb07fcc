package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaDeclaresAllTables(t *testing.T) {
	schema := Schema()
	for _, table := range []string{
		"users", "categories", "products", "supplements", "accompaniments",
		"product_supplement", "accompaniment_product", "tables", "orders",
		"order_items", "order_item_supplement", "order_item_accompaniment",
		"payments", "cash_registers", "notifications", "outbox_events",
	} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (", table)
	}
}
