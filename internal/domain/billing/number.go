package billing

import (
	"fmt"
	"strconv"
	"strings"
)

const numberPrefix = "INV"

// FormatNumber arma el número visible de una factura: INV-2024-001.
func FormatNumber(year, seq int) string {
	return fmt.Sprintf("%s-%d-%03d", numberPrefix, year, seq)
}

// NumberPrefix devuelve el prefijo de las facturas de un año: INV-2024-.
func NumberPrefix(year int) string {
	return fmt.Sprintf("%s-%d-", numberPrefix, year)
}

// NextNumber devuelve el número siguiente a last para el año dado.
// Si last está vacío o pertenece a otro año, la secuencia empieza en 1.
func NextNumber(year int, last string) string {
	prefix := NumberPrefix(year)
	if !strings.HasPrefix(last, prefix) {
		return FormatNumber(year, 1)
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
	if err != nil || seq < 0 {
		return FormatNumber(year, 1)
	}
	return FormatNumber(year, seq+1)
}
