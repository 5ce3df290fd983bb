// Package document defines the internal SOP and training document catalog.
package document

// Category groups documents on the documents page.
type Category string

const (
	CategoryAll      Category = "全部"
	CategorySOP      Category = "作業規範"
	CategoryHandbook Category = "館別手冊"
	CategoryLegal    Category = "法務合約"
	CategoryTutorial Category = "系統教學"
)

// Categories lists the filter tabs in display order.
var Categories = []Category{CategoryAll, CategoryHandbook, CategorySOP, CategoryLegal, CategoryTutorial}

// Document is one catalog entry.
type Document struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Format      string   `json:"format"`
	UpdatedAt   string   `json:"updatedAt"`
	Target      string   `json:"target"`
}

// Catalog returns the curated document list.
func Catalog() []Document {
	return []Document{
		{ID: "D1", Category: CategorySOP, Title: "S3 階段報價單上傳操作指引", Description: "詳細說明如何製作符合內控規範的報價單並正確上傳至系統。", Format: "PDF", UpdatedAt: "2026-01-05", Target: "全體業務"},
		{ID: "D2", Category: CategoryHandbook, Title: "四維館 - 帶看注意事項與設備清單", Description: "包含公共空間使用規則、車位租賃權限及門禁卡設定流程。", Format: "PDF", UpdatedAt: "2025-12-20", Target: "營運/業務"},
		{ID: "D3", Category: CategoryLegal, Title: "標準租賃合約範本 (2026 修訂版)", Description: "法務部核定之正式合約，包含特殊條款修改建議。", Format: "DOCX", UpdatedAt: "2026-01-01", Target: "業務/法務"},
		{ID: "D4", Category: CategoryTutorial, Title: "看板操作與多館別篩選教學影片", Description: "兩分鐘快速上手新版看板操作與數據過濾功能。", Format: "Video", UpdatedAt: "2026-01-06", Target: "全體同仁"},
		{ID: "D5", Category: CategorySOP, Title: "財務開帳與押金入帳核對流程", Description: "說明 S6 階段如何與財務部對接，確保帳款正確歸檔。", Format: "PDF", UpdatedAt: "2025-11-15", Target: "會計/營運"},
	}
}

// ByCategory filters the catalog; CategoryAll (or empty) returns everything.
func ByCategory(cat Category) []Document {
	docs := Catalog()
	if cat == "" || cat == CategoryAll {
		return docs
	}
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if d.Category == cat {
			out = append(out, d)
		}
	}
	return out
}
