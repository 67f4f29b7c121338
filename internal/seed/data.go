package seed

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/bikestore/internal/domain/models"
)

var sampleSuppliers = []models.Supplier{
	{Name: "Trek Bicycle Corporation", ContactPerson: "John Smith", Phone: "+1-555-0101", Email: "john@trek.com", Address: "801 W Madison St, Waterloo, WI 53594"},
	{Name: "Giant Manufacturing Co.", ContactPerson: "Lisa Chen", Phone: "+1-555-0102", Email: "lisa@giant-bicycles.com", Address: "No. 12-8, Zhongshan Rd., Dajia Dist., Taichung City 437"},
	{Name: "Specialized Bicycle Components", ContactPerson: "Mike Johnson", Phone: "+1-555-0103", Email: "mike@specialized.com", Address: "15130 Concord Circle, Morgan Hill, CA 95037"},
	{Name: "Cannondale Bicycle Corporation", ContactPerson: "Sarah Wilson", Phone: "+1-555-0104", Email: "sarah@cannondale.com", Address: "1 Cannondale Way, Wilton, CT 06897"},
	{Name: "Scott Sports SA", ContactPerson: "David Kumar", Phone: "+1-555-0105", Email: "david@scott-sports.com", Address: "Route du Crochet 17, 1762 Givisiez, Switzerland"},
}

func bike(brand, model string, t models.BikeType, price int64, stock int, color string) models.Bike {
	return models.Bike{
		Brand:         brand,
		Model:         model,
		Type:          t,
		Price:         decimal.NewFromInt(price),
		StockQuantity: stock,
		Color:         color,
	}
}

var sampleBikes = []models.Bike{
	bike("Trek", "Domane SL 7", models.BikeTypeRoad, 185000, 8, "Carbon Black"),
	bike("Trek", "Émonda ALR 5", models.BikeTypeRoad, 95000, 12, "Matte Red"),
	bike("Giant", "TCR Advanced Pro 1", models.BikeTypeRoad, 165000, 6, "Team Blue"),
	bike("Giant", "Contend 3", models.BikeTypeRoad, 48000, 15, "Metallic Black"),
	bike("Specialized", "Tarmac SL7 Expert", models.BikeTypeRoad, 295000, 4, "Gloss White"),
	bike("Specialized", "Allez Elite", models.BikeTypeRoad, 68000, 18, "Satin Blue"),

	bike("Trek", "Fuel EX 9.7", models.BikeTypeMountain, 235000, 7, "Matte Green"),
	bike("Trek", "Marlin 7", models.BikeTypeMountain, 58000, 20, "Orange"),
	bike("Giant", "Trance X Advanced Pro 1", models.BikeTypeMountain, 285000, 5, "Carbon"),
	bike("Giant", "Talon 3", models.BikeTypeMountain, 42000, 22, "Yellow"),
	bike("Specialized", "Stumpjumper EVO Expert", models.BikeTypeMountain, 325000, 3, "Sage Green"),
	bike("Specialized", "Rockhopper Elite", models.BikeTypeMountain, 52000, 16, "Red"),

	bike("Trek", "FX 3 Disc", models.BikeTypeHybrid, 72000, 14, "Grey"),
	bike("Giant", "Escape 3", models.BikeTypeHybrid, 38000, 25, "Silver"),
	bike("Cannondale", "Quick CX 3", models.BikeTypeHybrid, 65000, 11, "Purple"),

	bike("Trek", "Verve+ 2", models.BikeTypeElectric, 145000, 6, "Teal"),
	bike("Giant", "Explore E+ 1 GTS", models.BikeTypeElectric, 195000, 4, "Matte Black"),
	bike("Specialized", "Turbo Vado 4.0", models.BikeTypeElectric, 225000, 5, "White"),

	bike("Trek", "Precaliber 24", models.BikeTypeCruiser, 28000, 12, "Pink"),
	bike("Giant", "ARX 20", models.BikeTypeCruiser, 22000, 15, "Blue"),
	bike("Specialized", "Riprock 20", models.BikeTypeCruiser, 32000, 10, "Green"),

	bike("GT", "Performer 21", models.BikeTypeBMX, 35000, 8, "Black"),
	bike("Haro", "Downtown 20.5", models.BikeTypeBMX, 42000, 6, "Chrome"),
}

var sampleCustomers = []models.Customer{
	{Name: "Rajesh Kumar", Phone: "+91-9876543210", Email: "rajesh.kumar@email.com", Address: "123 MG Road, Bangalore, Karnataka 560001"},
	{Name: "Priya Sharma", Phone: "+91-9876543211", Email: "priya.sharma@email.com", Address: "456 Park Street, Kolkata, West Bengal 700016"},
	{Name: "Amit Patel", Phone: "+91-9876543212", Email: "amit.patel@email.com", Address: "789 FC Road, Pune, Maharashtra 411005"},
	{Name: "Sneha Reddy", Phone: "+91-9876543213", Email: "sneha.reddy@email.com", Address: "321 Jubilee Hills, Hyderabad, Telangana 500033"},
	{Name: "Vikram Singh", Phone: "+91-9876543214", Email: "vikram.singh@email.com", Address: "654 Connaught Place, New Delhi 110001"},
	{Name: "Anita Joshi", Phone: "+91-9876543215", Email: "anita.joshi@email.com", Address: "987 Linking Road, Mumbai, Maharashtra 400050"},
	{Name: "Rahul Gupta", Phone: "+91-9876543216", Email: "rahul.gupta@email.com", Address: "147 Anna Salai, Chennai, Tamil Nadu 600002"},
	{Name: "Meera Nair", Phone: "+91-9876543217", Email: "meera.nair@email.com", Address: "258 MG Road, Kochi, Kerala 682016"},
	{Name: "Arjun Kapoor", Phone: "+91-9876543218", Email: "arjun.kapoor@email.com", Address: "369 Residency Road, Mysore, Karnataka 570001"},
	{Name: "Kavya Iyer", Phone: "+91-9876543219", Email: "kavya.iyer@email.com", Address: "741 Brigade Road, Bangalore, Karnataka 560025"},
	{Name: "Suresh Yadav", Phone: "+91-9876543220", Email: "suresh.yadav@email.com", Address: "852 Civil Lines, Jaipur, Rajasthan 302006"},
	{Name: "Deepika Rao", Phone: "+91-9876543221", Email: "deepika.rao@email.com", Address: "963 Koramangala, Bangalore, Karnataka 560034"},
	{Name: "Karthik Menon", Phone: "+91-9876543222", Email: "karthik.menon@email.com", Address: "159 Marine Drive, Kochi, Kerala 682031"},
	{Name: "Pooja Agarwal", Phone: "+91-9876543223", Email: "pooja.agarwal@email.com", Address: "357 Hazratganj, Lucknow, Uttar Pradesh 226001"},
	{Name: "Rohan Desai", Phone: "+91-9876543224", Email: "rohan.desai@email.com", Address: "468 Law Garden, Ahmedabad, Gujarat 380006"},
}
