package recommend

import "github.com/desertthunder/melodi/internal/shared"

// DefaultCategories returns the built-in categories in evaluation order, ending with the fallback.
func DefaultCategories() []Category {
	return []Category{
		{
			Name:     "melancholic",
			Keywords: []string{"sakin", "hüzünlü", "melankolik", "üzgün"},
			Response: "Anlayıştığım kadarıyla sakin ve melankolik şarkılar arıyorsunuz. Size ruh halinize uygun, duygusal ve içten şarkılar önerdim. Bu parçalar genellikle yavaş tempolu ve derin sözlere sahip.",
			Limit:    3,
			Rule:     Rule{Artists: []string{"Müslüm", "Orhan Gencebay"}, Titles: []string{"Ayrılık", "Hüzün"}},
		},
		{
			Name:     "energetic",
			Keywords: []string{"mutlu", "enerjik", "dans", "eğlenceli"},
			Response: "Enerjik ve mutlu şarkılar istiyorsunuz! Size dans edebileceğiniz, pozitif enerjisi yüksek parçalar seçtim. Bu şarkılar günlük stresinizi atmanız için mükemmel.",
			Limit:    3,
			Rule:     Rule{Artists: []string{"Tarkan", "Ceza"}, MinPlayCount: 800000},
		},
		{
			Name:     "turkish-pop",
			Keywords: []string{"türkçe", "pop", "klasik"},
			Response: "Türkçe pop klasiklerini seviyorsunuz! Size nostaljik hisler uyandıracak, kaliteli Türkçe pop şarkıları seçtim. Bu parçalar Türk müziğinin altın çağından.",
			Limit:    3,
			Rule:     Rule{Artists: []string{"Sezen Aksu", "Ajda Pekkan", "Sertab Erener"}},
		},
		{
			Name:     "rock",
			Keywords: []string{"rock", "alternatif"},
			Response: "Rock ve alternatif müzik seviyorsunuz! Size güçlü vokal ve enstrümantal düzenlemeleri olan şarkılar önerdim.",
			Limit:    3,
			Rule:     Rule{Artists: []string{"Haluk Levent"}, Platforms: []string{"youtube"}},
		},
		{
			Name:     "focus",
			Keywords: []string{"çalışma", "odaklanma", "konsantrasyon"},
			Response: "Çalışma için uygun şarkılar arıyorsunuz. Size dikkat dağıtmayacak, arka planda çalabilecek yumuşak melodili parçalar seçtim.",
			Limit:    3,
			Rule:     Rule{MinDuration: 200, MaxDuration: 300},
		},
		{
			Name:     "playlist",
			Keywords: []string{"playlist", "liste"},
			Response: "Size özel bir playlist oluşturmak için farklı türlerden bir karışım hazırladım. Bu liste ruh halinize göre değişken şarkılar içeriyor.",
			Limit:    5,
		},
		defaultFallback(),
	}
}

func defaultFallback() Category {
	return Category{
		Name:     "popular",
		Response: `"` + QueryPlaceholder + `" ile ilgili size özel müzik önerileri hazırladım. Bu şarkılar popülerlik ve müzik kalitesi göz önünde bulundurularak seçildi. Umuyorum beğenirsiniz!`,
		Limit:    4,
		Popular:  true,
	}
}

// FromConfig builds a selector from configured categories, or from [DefaultCategories] when none are configured.
func FromConfig(cfg shared.RecommendConfig) (*Selector, error) {
	if len(cfg.Categories) == 0 {
		return NewSelector(DefaultCategories())
	}

	categories := make([]Category, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		limit := c.Limit
		if limit == 0 {
			limit = 3
		}
		categories = append(categories, Category{
			Name:     c.Name,
			Keywords: c.Keywords,
			Response: c.Response,
			Limit:    limit,
			Popular:  c.Popular,
			Rule: Rule{
				Artists:      c.Artists,
				Titles:       c.Titles,
				Platforms:    c.Platforms,
				MinPlayCount: c.MinPlayCount,
				MinDuration:  c.MinDuration,
				MaxDuration:  c.MaxDuration,
			},
		})
	}
	return NewSelector(categories)
}
