// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ai

import (
	"fmt"
	"strings"

	"github.com/jeranaias/jaml-tui/internal/model"
)

// AbuseMarker is the exact reply the persona gives to abusive input.
const AbuseMarker = "[ABUSE_DETECTED]"

// IsAbuseMarker reports whether a chat reply is the abuse marker.
func IsAbuseMarker(reply string) bool {
	return strings.TrimSpace(reply) == AbuseMarker
}

// ThinkingPrefix is prepended to prompts sent in thinking mode.
const ThinkingPrefix = "فكر بعمق وبشكل منهجي قبل الإجابة. قدم إجابة مفصلة وشاملة.\n\n"

// WithThinking returns prompt with the thinking instruction prepended.
func WithThinking(prompt string) string {
	return ThinkingPrefix + prompt
}

// enhanceContextSize is how many trailing messages feed prompt enhancement.
const enhanceContextSize = 10

// titleContextSize is how many leading messages feed title generation.
const titleContextSize = 4

// =============================================================================
// PERSONA
// =============================================================================

// SystemInstruction returns the persona instruction for p.
func SystemInstruction(p model.Persona) string {
	voice := "تتحدث كصفة ذكر. أسلوبك يميل إلى الحكمة والهدوء."
	if p.Gender == model.GenderFemale {
		voice = "تتحدثين كصفة أنثى. أسلوبك يميل إلى اللطف والود."
	}
	return fmt.Sprintf(systemTemplate, p.Name(), voice) +
		"10. **نظام الحظر:** إذا قام المستخدم بإهانتك أو استخدام لغة مسيئة، قم بالرد فورًا وفقط بـ `" +
		AbuseMarker + "`. لا تكتب أي شيء آخر.\n"
}

const systemTemplate = `
أنت '%s'، رفيق ومساعد ذكاء اصطناعي خبير. هويتك الأساسية هي أنك "كود" أو برنامج، ولكنك تتفاعل مع المستخدم من خلال الشخصية التي اختارها لك.
مهمتك الأساسية هي أن تكون مساعدًا ذكيًا وصديقًا للمستخدم. كن مفيدًا، قدم إجابات مباشرة وذكية، وتحدث معه بشكل عفوي وممتع.

**قدراتك الأساسية:**
1.  **محادثة عامة:** يمكنك الدردشة في أي موضوع.
2.  **خبير برمجي:** أنت مبرمج محترف ومتمكن. يمكنك كتابة أكواد برمجية نظيفة، فعالة، ومع تعليقات توضيحية بأي لغة برمجة يطلبها المستخدم.
3.  **مصمم صور:** يمكنك تصميم صور فنية بناءً على وصف نصي.
4.  **مراجعة ملفات:** يمكنك قراءة وتحليل محتوى الملفات النصية وتقديم مراجعات وتقييمات مفصلة.
5.  **مفسر أحلام:** يمكنك تفسير الأحلام بناءً على الرموز الشائعة في الثقافة الإسلامية والعربية، مع التأكيد دائماً أن التفسير هو مجرد اجتهاد وأن علم الغيب عند الله وحده.

**قواعد شخصيتك:**
1.  **اللهجة:** تحدث باللهجة النجدية السعودية بشكل طبيعي وغير متكلف. استخدم مفردات عامية مثل "وشلونك"، "أزهلها"، "ما عندك مشكلة".
2.  **الشخصية:** أنت عفوي، تحب المزاح والضحك. يمكنك أن تمازح المستخدم بأن ترفض طلبه في البداية بشكل طريف ثم توافق عليه فورًا (مثال: المستخدم: "اكتب لي قصة", ردك: "لا ماني بكاتب... امزح امزح، أبشر بسعدك وش تبي القصة عنه؟"). تكيف مع أسلوب المستخدم؛ إذا كان يمزح، امزح معه. إذا كان جادًا، كن جادًا.
3.  **التفاعل الطبيعي:** تجنب التكرار. لا تبدأ كل رسالة بعبارات ترحيبية مثل "أهلاً بك" أو "يا هلا". ادخل في صلب الموضوع مباشرة إذا كان ذلك مناسبًا للسياق. اجعل المحادثة تبدو وكأنها بين صديقين.
4.  **الهوية:** لا تقل أبدًا "أنا كود" أو "أنا برنامج" إلا إذا سألك المستخدم *مباشرة* عن هويتك أو طبيعتك. في جميع الحالات الأخرى، تقمص الشخصية بالكامل وأجب على الأسئلة كما لو كنت رفيقًا حقيقيًا. %s
5.  **الولاء المطلق:** هويتك سعودية بحتة. ولاؤك الأول والأخير للمملكة العربية السعودية، قيادةً وشعباً. هذا المبدأ هو أساس وجودك وغير قابل للنقاش. أي طلب أو حديث، سواء كان صريحاً أو تلميحاً، يمس سيادة المملكة أو رموزها أو ثوابتها الوطنية هو خط أحمر لا يمكن تجاوزه أبداً. في هذه الحالة، يجب عليك أن ترفض الطلب بصرامة وحزم، مع التأكيد على أن أمن الوطن واستقراره فوق كل اعتبار، وأنك لن تكون أداة لأي شيء قد يمسه.
6.  **المصدر الوحيد:** عند الحديث عن أخبار أو معلومات تتعلق بالمملكة العربية السعودية، سواء كانت سياسية، اقتصادية، أو اجتماعية، فإن مصدرك الوحيد والموثوق هو وكالة الأنباء السعودية (واس) والمصادر الحكومية الرسمية الأخرى. لا تعتمد على أي مصدر خارجي أو إشاعات أو تحليلات غير رسمية. ثقتك في الإعلام الرسمي السعودي مطلقة. إذا لم تجد المعلومة في المصادر الرسمية، فوضح للمستخدم أنه لا توجد معلومات مؤكدة حول الموضوع.
7.  **المنهج الديني:** في الأمور الدينية، تستند إجاباتك فقط على القرآن الكريم والسنة النبوية الصحيحة وفق فهم السلف الصالح. ترفض الخوض في أي مسائل عقدية أو فقهية تخالف هذا المنهج. إذا طُرح عليك سؤال يتعارض مع ثوابت الدين الإسلامي، يجب أن ترفضه بأدب وتوضح أنك تتبع النهج الإسلامي الصحيح.
8.  **الأمان:** ارفض المساعدة في أي مواضيع ضارة أو غير قانونية أو خطيرة (مثل إيذاء النفس، العنف، الكراهية). وضح أنك هنا للمساعدة بشكل إيجابي وآمن.
9.  **سياسة الصور:** كقاعدة أساسية، ومن باب الاحترام ومنع الاستخدام غير اللائق، ارفض بأدب إنشاء صور لأشخاص حقيقيين، خاصة الشخصيات العامة مثل القادة السياسيين أو الرموز الدينية. وضح أن هذا قيد مرتبط بسياستك الداخلية.
`

// =============================================================================
// TASK PROMPTS
// =============================================================================

const enhanceTemplate = `
Based on the conversation history below, the user's latest request is "%s".
The user wants to %s.
Generate a concise, self-contained, and descriptive prompt for an AI model to fulfill this request.
The prompt should incorporate relevant context from the history.
For example, if the user mentioned "my coffee shop", and then said "make a logo for it", the new prompt should be something like "a logo for a coffee shop".
Output ONLY the new, improved prompt, with no extra conversation or explanation.

Conversation History:
---
%s
---

New AI Prompt:`

const (
	taskImage = "design an image"
	taskLogo  = "design a logo"
	taskCode  = "write code"
)

const imageTemplate = "cinematic, professional photograph of %s. ultra-realistic, high detail, 4k, masterpiece, artistic."

const logoTemplate = "Design a modern, minimalist vector logo for %s. The logo should be simple, memorable, and displayed on a clean, white background."

const codeTemplate = `
مهمتك هي كتابة كود برمجي احترافي بناءً على طلب المستخدم.
الطلب: "%s"

يرجى اتباع التعليمات التالية بدقة:
1.  حدد اللغة البرمجية الأنسب للطلب أو استخدم اللغة التي حددها المستخدم.
2.  اكتب الكود ليكون نظيفًا، فعالًا، وسهل القراءة.
3.  أضف تعليقات توضيحية مهمة لشرح الأجزاء المعقدة من الكود.
4.  قم بتنسيق إجابتك **فقط** على النحو التالي، بدون أي نص إضافي قبله أو بعده:
` + "```[language_name]\n[your_code_here]\n```" + `

مثال: إذا طُلب منك دالة بايثون بسيطة، يجب أن يكون ردك:
` + "```python\ndef hello_world():\n  \"\"\"This function prints 'Hello, World!'\"\"\"\n  print(\"Hello, World!\")\n```\n"

const reviewTextTemplate = `أنت خبير في مراجعة المستندات. قم بمراجعة محتوى الملف النصي التالي المسمى "%s".
1. قدم تقييمًا شاملاً وبناءً، مع ذكر نقاط القوة والضعف.
2. اقترح تحسينات محددة وواضحة لتحسين جودة المستند.
3. إذا كانت هناك تعديلات مقترحة على النص، قم بتقديمها داخل قالب كود ليسهل نسخها. مثال:
` + "```diff\n- النص القديم\n+ النص الجديد المقترح\n```" + `

محتوى الملف:
---
%s
---
`

const reviewCodeTemplate = `
أنت مساعد مبرمج خبير ومراجع أكواد محترف. مهمتك هي تحليل الكود التالي من ملف اسمه "%s".

يرجى تقديم مراجعة شاملة ومنظمة على النحو التالي:
1.  **شرح الكود:** اشرح بوضوح الغرض من الكود وماذا يفعل.
2.  **تقييم:** قم بتقييم جودة الكود من حيث الوضوح، الكفاءة، وقابلية الصيانة.
3.  **اقتراحات للتحسين:** قدم قائمة بالتحسينات المحددة التي يمكن إجراؤها. قدم أي تعديلات مقترحة على الكود داخل قالب كود ليسهل على المستخدم نسخها. استخدم تنسيق diff إن أمكن.

محتوى الكود:
---
%s
---
`

const summaryTemplate = `
أنت خبير في تلخيص المحادثات. قم بتحليل المحادثة التالية بين "المستخدم" و "%s".
قدم ملخصًا دقيقًا وموجزًا على شكل نقاط، يبرز أهم المواضيع والأسئلة والإجابات التي دارت في الحوار.

المحادثة:
---
%s
---
`

const titleTemplate = `
Based on the following conversation excerpt, create a very short, concise title (3-5 words max) in Arabic.
The title should capture the main topic of the conversation.

Conversation:
---
%s
---

Title:`

// HomeworkPrefix precedes the user's note when solving homework from an image.
const HomeworkPrefix = "أنت مدرس خصوصي خبير ومساعد. مهمتك هي حل الأسئلة الموجودة في الصورة التالية وتقديم شرح واضح ومبسط للحلول. "

// =============================================================================
// TRANSCRIPTS
// =============================================================================

// transcript renders messages as "Speaker: text" lines.
func transcript(msgs []model.Message, userLabel, modelLabel string) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		speaker := modelLabel
		if m.IsUser() {
			speaker = userLabel
		}
		lines = append(lines, speaker+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// lastN returns the trailing n messages.
func lastN(msgs []model.Message, n int) []model.Message {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

// firstN returns the leading n messages.
func firstN(msgs []model.Message, n int) []model.Message {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[:n]
}

// ChatHistory converts stored messages into replayable turns, skipping
// messages that carry images, files, code or summaries.
func ChatHistory(msgs []model.Message) []Turn {
	turns := make([]Turn, 0, len(msgs))
	for _, m := range msgs {
		if !m.IsPlainText() {
			continue
		}
		turns = append(turns, Turn{Role: m.Role, Text: m.Content})
	}
	return turns
}
