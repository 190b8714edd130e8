package config

import "testing"

func TestPlantRowLayout(t *testing.T) {
	rows := MaxVisiblePlantRows()
	if rows < 8 {
		t.Fatalf("expected room for at least 8 plant rows, got %d", rows)
	}

	// 最后一行不能压到底部帮助文字
	if bottom := PlantRowY(rows-1) + PlantRowHeight; bottom > float64(FooterY) {
		t.Errorf("last row ends at %.1f, beyond footer at %d", bottom, FooterY)
	}

	if PlantRowY(0) != PlantListStartY {
		t.Errorf("first row Y = %.1f, want %.1f", PlantRowY(0), PlantListStartY)
	}
}
