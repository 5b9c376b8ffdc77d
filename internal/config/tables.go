package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONVERSION TABLES
// =============================================================================

// BundleComponent is one physical product inside a bundle ("set") product.
type BundleComponent struct {
	Code  string `yaml:"code"`
	Name  string `yaml:"name"`
	Price int64  `yaml:"price"`
}

// Tables holds the static lookup tables used by the sales encoder. A
// Tables value is built once at startup and only read afterwards.
type Tables struct {
	// Bundles maps a bundle product code to its components.
	Bundles map[string][]BundleComponent `yaml:"bundles"`

	// ProductNames maps ColorMe product codes to the Yayoi product name.
	ProductNames map[string]string `yaml:"product_names"`

	// ShippingCodes maps a prefecture name to its shipping product code.
	ShippingCodes map[string]string `yaml:"shipping_codes"`

	// DefaultShippingCode is used for prefectures missing from ShippingCodes.
	DefaultShippingCode string `yaml:"default_shipping_code"`
}

// LoadTables returns the conversion tables. An empty path yields the
// built-in tables; otherwise each section present in the YAML file replaces
// the built-in section.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read tables file: %w", err)
	}

	var override Tables
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Tables{}, fmt.Errorf("failed to parse tables file: %w", err)
	}

	if override.Bundles != nil {
		tables.Bundles = override.Bundles
	}
	if override.ProductNames != nil {
		tables.ProductNames = override.ProductNames
	}
	if override.ShippingCodes != nil {
		tables.ShippingCodes = override.ShippingCodes
	}
	if override.DefaultShippingCode != "" {
		tables.DefaultShippingCode = override.DefaultShippingCode
	}

	for code, components := range tables.Bundles {
		if len(components) == 0 {
			return Tables{}, fmt.Errorf("bundle %s has no components", code)
		}
	}

	return tables, nil
}

// DefaultTables returns the built-in tables.
func DefaultTables() Tables {
	return Tables{
		Bundles: map[string][]BundleComponent{
			"1229": {
				{Code: "1221", Name: "ビダウォーターソープ詰替用(400ml)", Price: 2420},
				{Code: "1224", Name: "泡ポンプ400ml空容器", Price: 800},
			},
			"1378": {
				{Code: "1369", Name: "Ag・uAアグア650mlパック(酵素水)", Price: 2530},
				{Code: "1396", Name: "遮光スプレー200ml(トリガーヘッド) 空容器", Price: 800},
			},
			"1379": {
				{Code: "1393", Name: "お米と大豆の酵素水650mlパック", Price: 2530},
				{Code: "1396", Name: "遮光スプレー200ml(トリガーヘッド) 空容器", Price: 800},
			},
			"1227": {
				{Code: "1226", Name: "ビダウォーターソープ200ml", Price: 1980},
				{Code: "1221", Name: "ビダウォーターソープ詰替用(400ml)", Price: 2420},
				{Code: "1228", Name: "ビダソープセット割引", Price: -100},
			},
		},
		ProductNames: map[string]string{
			"1364": "Ag・uA(ｱｸﾞｱ)100mlｽﾌﾟﾚｰﾎﾞﾄﾙ",
			"1365": "きのこの酵素水100mlｽﾌﾟﾚｰﾎﾞﾄﾙ",
			"1366": "お米と大豆の酵素水100mlｽﾌﾟﾚｰﾎﾞﾄﾙ",
			"1369": "Ag・uAアグア650mlパック(酵素水)",
			"1396": "遮光スプレー200ml(トリガーヘッド) 空容器",
		},
		ShippingCodes:       defaultShippingCodes(),
		DefaultShippingCode: "0010",
	}
}

// defaultShippingCodes groups prefectures by shipping region:
// 0010 Kanto/Chubu, 0011 Tohoku/Kinki, 0012 Chugoku/Shikoku,
// 0013 Hokkaido/Kyushu, 0014 Okinawa.
func defaultShippingCodes() map[string]string {
	regions := map[string][]string{
		"0010": {"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "東京都", "神奈川県",
			"新潟県", "富山県", "石川県", "福井県", "山梨県", "長野県", "岐阜県", "静岡県", "愛知県"},
		"0011": {"青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県",
			"三重県", "滋賀県", "京都府", "大阪府", "兵庫県", "奈良県", "和歌山県"},
		"0012": {"鳥取県", "島根県", "岡山県", "広島県", "山口県", "徳島県", "香川県", "愛媛県", "高知県"},
		"0013": {"北海道", "福岡県", "佐賀県", "長崎県", "熊本県", "大分県", "宮崎県", "鹿児島県"},
		"0014": {"沖縄県"},
	}

	codes := make(map[string]string, 47)
	for code, prefectures := range regions {
		for _, p := range prefectures {
			codes[p] = code
		}
	}
	return codes
}
