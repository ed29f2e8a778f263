package service

import (
	"strings"
	"time"

	"github.com/mingchang/meatshop/internal/inquiry/domain"
)

const submittedLayout = "2006-01-02 15:04"

type notification struct {
	Subject string
	Body    string
}

// composeGeneral renders the mail sent for the general contact form.
func composeGeneral(inq *domain.ContactInquiry, loc *time.Location) notification {
	subject := inq.SubjectDisplay()
	product := inq.ProductName
	if product == "" {
		product = domain.NoProduct
	}

	var b strings.Builder
	b.WriteString("新的客戶詢問 New Customer Inquiry\n")
	b.WriteString("===============================\n\n")
	writeCustomer(&b, inq)
	b.WriteString("語言偏好 Language: " + domain.LanguageLabel(inq.LanguagePreference) + "\n\n")
	b.WriteString("主旨 Subject: " + subject + "\n\n")
	b.WriteString("詢問產品 Product: " + product + "\n\n")
	writeMessage(&b, inq, loc)
	b.WriteString("請透過客戶提供的聯絡方式回覆此詢問。\n")
	b.WriteString("Please respond to this inquiry using the customer's provided contact information.\n")

	return notification{
		Subject: "新的客戶詢問 New Customer Inquiry - " + subject,
		Body:    b.String(),
	}
}

// composeProduct renders the mail sent for a product inquiry.
func composeProduct(inq *domain.ContactInquiry, loc *time.Location) notification {
	topic := inq.ProductName
	if topic == "" {
		topic = inq.Subject
	}
	subject := inq.Subject
	if subject == "" {
		subject = domain.ProductSubject
	}

	var b strings.Builder
	b.WriteString("產品詢問 Product Inquiry\n")
	b.WriteString("=======================\n\n")
	writeCustomer(&b, inq)
	b.WriteString("\n")
	b.WriteString("詢問產品 Product: " + inq.ProductName + "\n")
	b.WriteString("主旨 Subject: " + subject + "\n\n")
	writeMessage(&b, inq, loc)
	b.WriteString("請盡快回覆此產品詢問。\n")
	b.WriteString("Please respond to this product inquiry as soon as possible.\n")

	return notification{
		Subject: "產品詢問 Product Inquiry - " + topic,
		Body:    b.String(),
	}
}

func writeCustomer(b *strings.Builder, inq *domain.ContactInquiry) {
	b.WriteString("客戶資訊 Customer Information:\n")
	b.WriteString("姓名 Name: " + inq.Name + "\n")
	b.WriteString("電話 Phone: " + inq.Phone + "\n")
	b.WriteString("信箱 Email: " + inq.Email + "\n")
}

func writeMessage(b *strings.Builder, inq *domain.ContactInquiry, loc *time.Location) {
	b.WriteString("詢問內容 Message:\n")
	b.WriteString(inq.Message + "\n\n")
	b.WriteString("提交時間 Submitted: " + inq.CreatedAt.In(loc).Format(submittedLayout) + "\n\n")
}
