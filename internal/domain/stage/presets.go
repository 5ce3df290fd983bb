package stage

// BuiltinCatalogs returns the built-in stage catalogs, one per pipeline.
// The stage labels and checklists mirror the operator's internal-control
// procedures and are displayed verbatim.
func BuiltinCatalogs() []Catalog {
	return []Catalog{
		leaseCatalog(),
		registrationCatalog(),
		eventCatalog(),
		contractCatalog(),
	}
}

// leaseCatalog is the 8-stage office-leasing pipeline. All stages share one
// notification template; the placeholder carries the case title.
func leaseCatalog() Catalog {
	return Catalog{
		Name: "lease",
		Stages: []Stage{
			{ID: "S1", Title: "S1 待處理", Hint: "來源建立 / 初步需求", Checks: []string{"基本需求確認", "客戶背景調查"}},
			{ID: "S2", Title: "S2 需求訪談", Hint: "深入了解需求", Checks: []string{"已完成訪談", "需求規格紀錄"}},
			{ID: "S3", Title: "S3 口頭報價", Hint: "初步條件達成", Checks: []string{"報價單內容核對", "已傳送口頭報價"}},
			{ID: "S4", Title: "S4 現場場勘", Hint: "帶看安排", Checks: []string{"已完成現場帶看", "場勘紀錄已填寫"}},
			{ID: "S5", Title: "S5 需求確認(議價)", Hint: "最後價格攻防", Checks: []string{"議價紀錄更新", "統編資料確認"}},
			{ID: "S6", Title: "S6 擬定合約", Hint: "法務審閱中", Checks: []string{"合約草稿確認", "雙方印鑑核對"}},
			{ID: "S7", Title: "S7 成交", Hint: "流程完成", Checks: []string{"押金已入帳", "點交文件歸檔"}},
			{ID: "S8", Title: "S8 暫停", Hint: "案件保留", Checks: []string{"暫停原因備註"}},
		},
		SharedTemplate: "您好，關於「{username}」案件，目前進度已更新至：{stage}。\n後續將由專人與您聯繫，謝謝。",
	}
}

// registrationCatalog is the 7-stage corporate-registration pipeline. Each
// active stage carries the full outbound LINE message used by the secretaries;
// {username} is replaced with the customer name at confirmation time. Dwell
// time on this pipeline is cumulative and freezes once a card reaches S6/S7.
func registrationCatalog() Catalog {
	return Catalog{
		Name:        "registration",
		TerminalIDs: []string{"S6", "S7"},
		Stages: []Stage{
			{
				ID: "S1", Title: "S1 初步諮詢", Hint: "需求意向確認",
				Checks: []string{"客戶資料初步收集", "諮詢服務紀錄"},
				MessageTemplate: `您好, 感謝{username}的來訊！😊
很高興能參與您的創業規劃！為了提供最準確的協助，想先請教您目前的進度是：

1.剛起步： 還在想名字／預查階段（需要了解設立流程）
2.已成熟： 公司已設立，單純想做地址遷移

我們這邊提供最彈性的**「借址登記」**方案，價格透明且含秘書服務。 您可以直接告訴我您的情況，讓我為您安排最適合的方案！ (花一分鐘填寫表：https://share-na2.hsforms.com/1sSy_Tfx3S3ivoDlkXvsMVg3gltz )
道騰DT會幫您做更近一步方案推薦～～

道騰商務空間
價格透明 ✅ 半年/月/2年繳
秘書支援 ✅ 現場+遠端
空間多元 ✅ 會議、接待、活動
顧問輔導 ✅ 深耕十年，專業經驗
後續支援 ✅ 顧客成功導向`,
			},
			{
				ID: "S2", Title: "S2 方案說明", Hint: "產品組合建議",
				Checks: []string{"報價方案確認", "服務項目選定"},
				MessageTemplate: `Hello,
創業初期流程真的比較繁瑣，別擔心，我們來幫您化繁為簡！💪
開公司其實只要掌握這 5 個步驟，剩下的細節我們都可以協助：
1️⃣ 公司名： 先想好公司名稱＋營業項目
2️⃣ 預查： 線上申請名稱預查（🔗 https://reurl.cc/GNMqOD ）
3️⃣ 簽約： 這一步交給道騰！ 當名稱預查通過，我們提供合規的地址與合約書給您
4️⃣ 送件： 拿著合約與核定書，向政府-經發局申請設立
5️⃣ 啟動： 國稅局面談後，拿到統編，正式開張！

💡 道騰的價值： 我們不只提供地址，還有**「創業補助諮詢」與「銀行開戶對接」**，這比單純租地址對您幫助更大。 您目前手邊有配合的會計師了嗎？還是需要我們推薦專業夥伴給您參考呢？

延伸補充：
創業導航：https://reurl.cc/lab6qd
費用試算：https://dt-smart-virtue-office-404364429356.us-west1.run.app
新公司設立 📹 影片:https://reurl.cc/NNDbpk

創業課程＆最新消息：https://www.daoteng.org/news
高雄新創資源＆補助：https://www.daoteng.org/link-up-kaohsiung
數位升級：https://deltra.org

資源補帖：
要成立有限公司還是商行
🔗https://reurl.cc/o019XQ
公司設立的步驟
🔗https://reurl.cc/OVAXe3

最新的創業補助資源參考
上集｜🔗 https://reurl.cc/DAmx45
下集｜🔗 https://reurl.cc/mDlpy7

期待您的公司設立成功～～讓我們當您最強後盾！`,
			},
			{
				ID: "S3", Title: "S3 報價", Hint: "價格條件提供",
				Checks: []string{"發送正式報價單", "確認客戶預算"},
				MessageTemplate: `您好！

針對您的需求，我們推薦最受歡迎的 【年繳方案】
除了價格最優惠（換算下來每月僅需 $XXXX），最重要的是省去每月轉帳的行政瑣事，合約也是一年一簽最單純。

👉 詳細金額試算可以看這裡：https://www.daoteng.org/virtue-office-calc

如果方案沒問題，看您想預約
選擇簽約方式：現場/線上 (請選其一)

-->> 方式一：「現場簽約（順便參觀環境）」 還是
-->> 方式二：「線上簽約（快速方便）」 呢？

(簡單1分鐘填寫預約簽約表單)
https://share-na2.hsforms.com/17nO5cGLkTIWSsVH9z-dBow3gltz

預約簽約日期/時間：

客戶一致讚賞超值方案，立即行動吧！

＊備註：
📌 新公司借址登記：您需準備的文件清單
1. 負責人身份證影本： 用於簽訂虛擬辦公室合約。
2. 公司名稱預查核定書： 證明公司名稱與營業項目已核准。
3. 公司大小章： 用於合約簽署，建議先刻好。
影片說明: https://reurl.cc/W80Wre`,
			},
			{
				ID: "S4", Title: "S4 追蹤關懷", Hint: "客戶意願追蹤",
				Checks: []string{"關懷聯繫紀錄", "異議處理排除"},
				MessageTemplate: `您好！
昨天傳給您的方案內容比較多，不知道有沒有哪邊說明不清楚的地方？
其實很多創業者在第一步（如：行業代碼、營業項目）會比較頭痛。如果這方面有疑問，都可以直接問我，我幫您看一下喔！不用客氣 😊

關於以下問題都可以一站式參照網址： https://www.daoteng.org/virtue-office-calc
- 營業項目＆稅務參考
- 常見工商登記 QA
- 工商登記7大流程
- 申請準備＆提供文件

在道騰，我們不只提供地址，更希望成為您創業路上的「神隊友」。 若有任何預算或地點的考量，歡迎隨時跟我說，我們都可以討論怎麼協助您喔！`,
			},
			{
				ID: "S5", Title: "S5 簽約中", Hint: "合約流程執行",
				Checks: []string{"合約條款核對", "印鑑資料準備"},
				MessageTemplate: `太好了！歡迎加入道騰的大家庭 🤝
為了縮短您當天簽約等待的時間，請協助先提供以下資料，秘書會預先幫您把合約準備好：
一、【請提供電子檔或照片】
1.預查核定書（或舊公司營登函）
2.負責人身分證（正反面）

二、【簽約當日請攜帶】
📍公司大小章

三、【請填寫基本資料-合約製作】
方式1: 填寫表單 https://share-na2.hsforms.com/17nO5cGLkTIWSsVH9z-dBow3gltz
方式2: 或手打資訊回覆
🏢 公司名稱：
👤 負責人姓名：
📍 聯繫地址：
📞 聯繫電話：
📧 Email(請款單寄送)：
🚨 緊急聯絡人&電話：
（重要！若稅務局聯繫不到負責人時的必要窗口）：

資料傳給我就可以囉！收到後我立刻為您安排。

四、【簽約地點】
(*)道騰民權館 Tel：(07) 963-5286 #99
(*)地址：高雄市新興區民權一路 251 號 21 樓
(*) Google 導覽：https://maps.app.goo.gl/JY4EuVnmeasMSPwDA
(*)停車資訊：https://www.daoteng.org/leek

欲了解完整的公司設立流程，可參考此教學文章說明：
🔗 https://reurl.cc/4megzY

【備註】
如有其他問題（如政府查驗、會計師代辦、報稅開戶流程等），我們也能提供配套資訊與專業協助。
以上資料完備簽約僅需約 15 分鐘。`,
			},
			{
				ID: "S6", Title: "S6 成交", Hint: "正式結案簽署",
				Checks: []string{"完成合約簽署", "首筆款項入帳"},
				MessageTemplate: `感謝您今天撥空前來簽約，合作愉快！🎊 很開心有為您服務的機會
這是您的公司登記資料，建議您存下來傳給會計師：
📮 收件提醒
收件人：請填寫簽約之公司名稱（※請勿僅填人名）
地址：800 高雄市新興區民權一路 251 號21樓

🧾 發票開立
若公司已設立並取得統編，請通知我們，將為您開立正式發票。

📆 合約續約機制
本合約採自動續約，無須再次親簽。到期前一個月，我們的客服將主動提醒您繳費事項。若提前終止，該期租金恕不退還，但您可選擇：全額折抵升級實體辦公室，或轉讓至同負責人名下之其他公司（需酌收手續費）。

💼 資源與活動
我們正積極配合勞動部與鳳凰創業計畫，推動創業輔導、補助媒合與進修課程。誠摯邀請您參與，掌握政策利多，拓展事業版圖。
新創最新消息＆補助👉 https://www.daoteng.org/news
創業知識＋👉https://www.daoteng.org/knowledge-base
創業鳳凰 👉https://beboss.wda.gov.tw/

未來有任何創業補助或會議室需求，隨時敲我，道騰就是您最強的後盾！🚀

預祝鴻圖大展`,
			},
			{ID: "S7", Title: "S7 暫停", Hint: "暫時停止跟進", Checks: []string{"標記暫停原因", "預約未來聯繫"}},
		},
	}
}

// contractCatalog is the 3-stage signed-contract archive. Contracts carry the
// same financial fields as lease cases; the stages track the lifecycle of an
// executed contract rather than a sales funnel.
func contractCatalog() Catalog {
	return Catalog{
		Name:        "contract",
		TerminalIDs: []string{"S3"},
		Stages: []Stage{
			{ID: "S1", Title: "S1 生效中", Hint: "合約執行中", Checks: []string{"合約掃描檔上傳", "統編資料核對"}},
			{ID: "S2", Title: "S2 即將到期", Hint: "到期前一個月提醒", Checks: []string{"續約意願確認", "繳費提醒已通知"}},
			{ID: "S3", Title: "S3 已結案", Hint: "合約終止/歸檔", Checks: []string{"結案文件歸檔", "押金退還確認"}},
		},
	}
}

// eventCatalog is the 6-stage marketing-event pipeline.
func eventCatalog() Catalog {
	return Catalog{
		Name: "event",
		Stages: []Stage{
			{ID: "S1", Title: "S1 待處理", Hint: "初步接洽/需求收集", Checks: []string{"聯繫主辦單位", "確認初步日期"}},
			{ID: "S2", Title: "S2 需求分析", Hint: "方案規劃與評估", Checks: []string{"完成需求分析表", "方案初步討論"}},
			{ID: "S3", Title: "S3 待報價", Hint: "成本核算中", Checks: []string{"成本清單確認", "報價單製作完成"}},
			{ID: "S4", Title: "S4 報價議價", Hint: "雙方價格磋商", Checks: []string{"報價單已發送", "議價過程紀錄"}},
			{ID: "S5", Title: "S5 成交", Hint: "簽約完成/執行中", Checks: []string{"簽署合約或訂單", "訂金已入帳"}},
			{ID: "S6", Title: "S6 暫停中(流失)", Hint: "案件保留或流失", Checks: []string{"紀錄流失原因", "結案歸檔"}},
		},
	}
}
