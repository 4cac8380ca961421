package notionsync

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/ledger-assistant/internal/domain"
)

// TransactionToNotionProperties converts a ledger transaction to Notion
// properties. The Description is the page title; Transaction ID is a
// plain rich-text property used for deduplication on later exports.
func TransactionToNotionProperties(tx *domain.Transaction) notionapi.Properties {
	props := notionapi.Properties{
		"Description": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.Description,
					},
				},
			},
		},
		"Transaction ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.ID,
					},
				},
			},
		},
		"Amount": notionapi.NumberProperty{
			Number: tx.Amount.InexactFloat64(),
		},
		"Date": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(time.Date(
						tx.Date.Year(),
						tx.Date.Month(),
						tx.Date.Day(),
						0, 0, 0, 0, time.UTC,
					))
					return &d
				}(),
			},
		},
	}

	if tx.TypeName != "" {
		props["Type"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.TypeName,
			},
		}
	}

	if tx.AccountID != "" {
		props["Account"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.AccountID,
					},
				},
			},
		}
	}

	if tx.CategoryID != "" {
		props["Category"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.CategoryID,
					},
				},
			},
		}
	}

	return props
}
