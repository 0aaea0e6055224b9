package cart

import (
	cartdto "github.com/dailykart/dailykart-backend/api/controllers/cart/dto"
	cartsvc "github.com/dailykart/dailykart-backend/internal/cart"
)

func newCartView(sessionID string, lines []cartsvc.Line, advisories []cartsvc.Advisory) cartdto.CartView {
	viewLines := make([]cartdto.CartLine, 0, len(lines))
	var subtotal int64
	for _, line := range lines {
		total := line.GrossTotal()
		subtotal += total
		viewLines = append(viewLines, cartdto.CartLine{
			LineID:      string(line.ID),
			ProductID:   line.ID.ProductID(),
			Name:        line.Product.Name,
			Unit:        line.Product.Unit,
			Variant:     line.Variant,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   total,
			MinOrderQty: line.MinOrderQty,
			InStock:     line.StockCeiling,
		})
	}

	viewAdvisories := make([]cartdto.CartAdvisory, 0, len(advisories))
	for _, advisory := range advisories {
		viewAdvisories = append(viewAdvisories, cartdto.CartAdvisory{
			Type:    advisory.Type.String(),
			LineID:  string(advisory.LineID),
			Message: advisory.Message,
		})
	}

	view := cartdto.CartView{
		SessionID: sessionID,
		Lines:     viewLines,
		Subtotal:  subtotal,
	}
	if len(viewAdvisories) > 0 {
		view.Advisories = viewAdvisories
	}
	return view
}
