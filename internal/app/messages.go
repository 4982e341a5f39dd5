// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"time"

	"github.com/jeranaias/jaml-tui/internal/model"
)

// Localized messages appended to conversations by the application itself.
const (
	MsgError           = "عذراً، حدث خطأ ما. يرجى المحاولة مرة أخرى."
	MsgFileReadError   = "تعذرت قراءة الملف. تأكد من أنه ملف نصي صالح ثم حاول مرة أخرى."
	MsgImagePolicy     = "لم أتمكن من إنشاء هذه الصورة. قد يخالف الطلب سياسة المحتوى، جرب وصفاً مختلفاً."
	MsgLogoPolicy      = "لم أتمكن من إنشاء هذا الشعار. قد يخالف الطلب سياسة المحتوى، جرب وصفاً مختلفاً."
	MsgWarning1        = "تنبيه: هذا الأسلوب غير مقبول. يرجى الحفاظ على الاحترام في المحادثة."
	MsgWarning2        = "تنبيه أخير: تكرار الإساءة سيؤدي إلى إيقاف المحادثة مؤقتاً."
	MsgBan             = "تم إيقاف المحادثة مؤقتاً بسبب تكرار الإساءة. يمكنك المتابعة بعد انتهاء المدة."
	MsgHomeworkPrompt  = "حل الأسئلة الموجودة في الصورة مع شرح الخطوات."
	MsgQuotaExhausted  = "لقد استنفدت رسائلك اليومية. يتجدد الرصيد عند منتصف الليل."
	MsgCodeReviewing   = "مراجعة الكود"
	MsgTextReviewing   = "مراجعة الملف"
	MsgSummaryHeading  = "ملخص المحادثة"
	MsgDevModeRequired = "هذه الميزة متاحة في وضع المطور فقط."
)

// Greeting returns the persona's opening line for a new conversation.
func Greeting(p model.Persona) string {
	if p.Gender == model.GenderFemale {
		return fmt.Sprintf("أهلاً! أنا %s، كيف أقدر أساعدك اليوم؟", p.Name())
	}
	return fmt.Sprintf("هلا والله! أنا %s، وش تبي نسوي اليوم؟", p.Name())
}

// WarningMessage returns the message shown for the n-th abuse warning.
func WarningMessage(n int) string {
	if n <= 1 {
		return MsgWarning1
	}
	return MsgWarning2
}

// BanCountdown formats the time left on a ban as "m:ss".
func BanCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
