package crawler

import "github.com/procwatch/procurement-cli/internal/model"

// Merge combines a list item with its optional detail record. For fields
// both carry, the detail value wins when it is non-nil and the list
// value survives otherwise; enrichment-only fields come from the detail.
// A nil detail yields the list item's fields alone.
func Merge(item model.ListItem, detail *model.Detail) model.Article {
	art := model.Article{
		ArticleAPIID: item.ArticleID,
		Title:        item.Title,
		PublishDate:  item.PublishDate,
		DistrictName: item.DistrictName,
		ProjectName:  item.ProjectName,
		PurchaseName: item.PurchaseName,
		BudgetPrice:  item.BudgetPrice,
	}
	if detail == nil {
		return art
	}

	art.Title = coalesce(detail.Title, item.Title)
	art.PublishDate = coalesce(detail.PublishDate, item.PublishDate)
	art.DistrictName = coalesce(detail.DistrictName, item.DistrictName)
	art.ProjectName = coalesce(detail.ProjectName, item.ProjectName)
	art.PurchaseName = coalesce(detail.PurchaseName, item.PurchaseName)
	art.BudgetPrice = coalesce(detail.BudgetPrice, item.BudgetPrice)

	art.Author = detail.Author
	art.ProcurementMethod = detail.ProcurementMethod
	art.SupplierName = detail.SupplierName
	art.TotalContractAmount = detail.TotalContractAmount
	art.BidOpeningTime = detail.BidOpeningTime
	art.HTMLContent = detail.HTMLContent
	art.TextContent = detail.TextContent
	art.AttachmentCount = detail.AttachmentCount

	return art
}

func coalesce[T any](a, b *T) *T {
	if a != nil {
		return a
	}
	return b
}
