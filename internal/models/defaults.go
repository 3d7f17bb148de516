package models

// Defaults used when the cache holds nothing usable.

const MainTreasury = "الخزنة الرئيسية"

func DefaultAccounts() []Account {
	return []Account{{ID: "1", Name: MainTreasury, Balance: 0}}
}

// DefaultUsers are guaranteed to exist by username after every load.
func DefaultUsers() []User {
	return []User{
		{ID: "1", Name: "المسؤول", Role: RoleAdmin, Username: "admin", Password: "123", Status: UserActive, Permissions: AdminPermissions()},
		{ID: "2", Name: "محمد رمضان", Role: RoleAdmin, Username: "mhmd", Password: "123", Status: UserActive, Permissions: AdminPermissions()},
	}
}

func DefaultSettings() Settings {
	return Settings{
		ID:            SingletonID,
		CompanyName:   "كنز للأثاث والمطابخ",
		Currency:      "ج.م",
		TaxRate:       14,
		Address:       "العاشر من رمضان، مصر",
		Phone:         "01012345678",
		InspectionFee: 500,
	}
}

func DefaultContractOptions() ContractOptions {
	soft := []string{"إغلاق هادئ (Soft Close)", "عادي"}
	return ContractOptions{
		ID:              SingletonID,
		ProjectTypes:    []string{"مطبخ", "دريسنج", "وحدات حمام", "أخرى"},
		WoodTypes:       []string{"HPL", "UV", "قشرة طبيعي", "أكريليك", "بولي لاك", "سوبر جلوس"},
		InnerShellTypes: []string{"أبيض فايبر", "خشبي فايبر", "أبيض ميلامين", "خشبي ميلامين"},
		HingeTypes:      append([]string(nil), soft...),
		SlideTypes:      append([]string(nil), soft...),
		HandleTypes:     []string{"داخلي (G-Line)", "خارجي متصل", "خارجي منفصل"},
		AccessoryNames:  []string{"سلة مهملات", "صفاية أطباق", "منظم أدراج", "إضاءة لد"},
		HangingTypes:    []string{"تعليقة بليتة", "تعليقة كوابيل"},
		FlipUpTypes:     []string{"هيدروليك باكم", "أفنتوس بلوم", "ميكانزم صيني"},
		LegTypes:        []string{"رجول ألمنيوم", "رجول بلاستيك", "رجول إستانلس"},
		ToeKickTypes:    []string{"وزر ألمنيوم", "وزر خشب نفس اللون", "وزر بلاستيك"},
		Units:           []string{"متر مربع", "متر طولي", "قطعة", "لوح", "لتر", "كجم"},
	}
}
