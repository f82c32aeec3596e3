package catalog

// units is the full catalog, ordered by id. Within a rarity the order is
// significant: random selection indexes into it.
var units = [...]Unit{
	{1, "Zephyrdrake", MegaRare, 98, 22},
	{2, "Bloomingo", MegaRare, 105, 24},
	{3, "Glaciowl", MegaRare, 110, 25},
	{4, "Terraclaw", SuperRare, 55, 13},
	{5, "Voltibra", SuperRare, 62, 15},
	{6, "Aquarion", SuperRare, 48, 11},
	{7, "Nocthorn", SuperRare, 68, 16},
	{8, "Sylphox", SuperRare, 51, 12},
	{9, "Pyroquill", SuperRare, 70, 16},
	{10, "Thornbuck", VeryRare, 33, 8},
	{11, "Emberox", VeryRare, 38, 9},
	{12, "Fungorilla", VeryRare, 29, 7},
	{13, "Gustling", VeryRare, 40, 9},
	{14, "Cobaltoad", VeryRare, 26, 6},
	{15, "Miragehare", VeryRare, 35, 8},
	{16, "Aquadrift", VeryRare, 31, 7},
	{17, "Photonix", VeryRare, 28, 6},
	{18, "Soniclaw", VeryRare, 37, 8},
	{19, "Luminpaca", VeryRare, 30, 7},
	{20, "Terrashock", VeryRare, 27, 6},
	{21, "Frostox", VeryRare, 39, 9},
	{22, "Hydropeck", DoubleRare, 20, 5},
	{23, "Pyroclam", DoubleRare, 24, 6},
	{24, "Vinemoth", DoubleRare, 17, 4},
	{25, "Rockaroo", DoubleRare, 22, 5},
	{26, "Aeropup", DoubleRare, 19, 4},
	{27, "Chronoray", DoubleRare, 25, 6},
	{28, "Floranox", DoubleRare, 16, 4},
	{29, "Echowing", DoubleRare, 23, 5},
	{30, "Quartzmite", DoubleRare, 18, 4},
	{31, "Voltannut", DoubleRare, 21, 5},
	{32, "Blizzear", DoubleRare, 20, 5},
	{33, "Ravenguard", DoubleRare, 24, 6},
	{34, "Glideon", DoubleRare, 17, 4},
	{35, "Miretoad", DoubleRare, 22, 5},
	{36, "Pyrolupus", DoubleRare, 19, 4},
	{37, "Borealynx", DoubleRare, 25, 6},
	{38, "Pyrokoala", DoubleRare, 16, 4},
	{39, "Aquaphant", DoubleRare, 23, 5},
	{40, "Chromacock", DoubleRare, 18, 4},
	{41, "Terrashield", DoubleRare, 21, 5},
	{42, "Gustgoat", Rare, 13, 3},
	{43, "Ignissquito", Rare, 15, 3},
	{44, "Fernbear", Rare, 11, 2},
	{45, "Shardster", Rare, 14, 3},
	{46, "Lumishark", Rare, 12, 2},
	{47, "Terrapotta", Rare, 15, 3},
	{48, "Cacteagle", Rare, 11, 2},
	{49, "Volticula", Rare, 14, 3},
	{50, "Shadewolf", Rare, 12, 2},
	{51, "Pyrotherium", Rare, 15, 3},
	{52, "Nimbusquid", Rare, 11, 2},
	{53, "Seraphowl", Rare, 14, 3},
	{54, "Auridillo", Rare, 12, 2},
	{55, "Verdantiger", Rare, 15, 3},
	{56, "Cryoweb", Rare, 11, 2},
	{57, "Heliofish", Rare, 14, 3},
	{58, "Ferrokit", Rare, 12, 2},
	{59, "Aetherhound", Rare, 15, 3},
	{60, "Magnetoise", Rare, 11, 2},
	{61, "Thornmunk", Rare, 14, 3},
	{62, "Prismaconda", Rare, 12, 2},
	{63, "Wyrmhawk", Rare, 15, 3},
	{64, "Stormbison", Rare, 11, 2},
	{65, "Solartaur", Rare, 14, 3},
	{66, "Aquashrew", Rare, 12, 2},
	{67, "Gustram", Rare, 15, 3},
	{68, "Chronocat", Rare, 11, 2},
	{69, "Spikoon", Rare, 14, 3},
	{70, "Prismoth", Rare, 12, 2},
	{71, "Froststag", Rare, 15, 3},
	{72, "Fluffleaf", Uncommon, 8, 2},
	{73, "Barkbat", Uncommon, 10, 2},
	{74, "Lichenmoose", Uncommon, 6, 1},
	{75, "Thornpup", Uncommon, 9, 2},
	{76, "Bloomlemur", Uncommon, 7, 1},
	{77, "Cryopus", Uncommon, 10, 2},
	{78, "Auroraccoon", Uncommon, 6, 1},
	{79, "Skinkflare", Uncommon, 9, 2},
	{80, "Buzzlebee", Uncommon, 7, 1},
	{81, "Camoskunk", Uncommon, 10, 2},
	{82, "Sparklion", Uncommon, 6, 1},
	{83, "Petalhog", Uncommon, 9, 2},
	{84, "Dewturtle", Uncommon, 7, 1},
	{85, "Frostbunny", Uncommon, 10, 2},
	{86, "Prismfly", Uncommon, 6, 1},
	{87, "Emberat", Uncommon, 9, 2},
	{88, "Mosskitty", Uncommon, 7, 1},
	{89, "Bloomink", Uncommon, 10, 2},
	{90, "Scorchpig", Uncommon, 6, 1},
	{91, "Sapossum", Uncommon, 9, 2},
	{92, "Cindercrow", Uncommon, 7, 1},
	{93, "Glowlure", Uncommon, 10, 2},
	{94, "Breezewren", Uncommon, 6, 1},
	{95, "Nutglow", Uncommon, 9, 2},
	{96, "Mistcub", Uncommon, 7, 1},
	{97, "Flarepup", Uncommon, 10, 2},
	{98, "Petalparrot", Uncommon, 6, 1},
	{99, "Aquarump", Uncommon, 9, 2},
	{100, "Lumisal", Uncommon, 7, 1},
	{101, "Sporestoat", Uncommon, 10, 2},
	{102, "Clinkfly", Uncommon, 6, 1},
	{103, "Dunesnail", Uncommon, 9, 2},
	{104, "Pearlcrab", Uncommon, 7, 1},
	{105, "Floracow", Uncommon, 10, 2},
	{106, "Emberloach", Uncommon, 6, 1},
	{107, "Circuitpup", Uncommon, 9, 2},
	{108, "Galestrich", Uncommon, 7, 1},
	{109, "Frostowl", Uncommon, 10, 2},
	{110, "Emberfin", Uncommon, 6, 1},
	{111, "Sparkmouse", Uncommon, 9, 2},
	{112, "Mossmoth", Uncommon, 7, 1},
	{113, "Orbitpup", Uncommon, 10, 2},
	{114, "Petalfawn", Uncommon, 6, 1},
	{115, "Stoneling", Uncommon, 9, 2},
	{116, "Glimmerfly", Uncommon, 7, 1},
	{117, "Gustbloom", Uncommon, 10, 2},
	{118, "Mossgator", Uncommon, 6, 1},
	{119, "Voltcobra", Uncommon, 9, 2},
	{120, "Lumiquill", Uncommon, 7, 1},
	{121, "CrystalFinch", Uncommon, 10, 2},
	{122, "Steamster", Uncommon, 6, 1},
	{123, "Fungipede", Uncommon, 9, 2},
	{124, "Petalcoat", Uncommon, 7, 1},
	{125, "Zephyrlark", Uncommon, 10, 2},
	{126, "Terrabunny", Uncommon, 6, 1},
	{127, "Starpup", Uncommon, 9, 2},
	{128, "Barkrat", Uncommon, 7, 1},
	{129, "Dewfawn", Uncommon, 10, 2},
	{130, "Suncurl", Uncommon, 6, 1},
	{131, "Sporehog", Uncommon, 9, 2},
	{132, "Puffbird", Common, 3, 1},
	{133, "Pebbletoad", Common, 5, 1},
	{134, "Flutterfish", Common, 1, 1},
	{135, "Puddlehopper", Common, 4, 1},
	{136, "Bouncecrab", Common, 2, 1},
	{137, "Snugslug", Common, 5, 1},
	{138, "Wiggleworm", Common, 1, 1},
	{139, "Bubbletoad", Common, 4, 1},
	{140, "Nestbunny", Common, 2, 1},
	{141, "Dappleduck", Common, 5, 1},
	{142, "Pipsqueak", Common, 1, 1},
	{143, "Softsparrow", Common, 4, 1},
	{144, "Fluffcalf", Common, 2, 1},
	{145, "Whispermouse", Common, 5, 1},
	{146, "Bubblebat", Common, 1, 1},
	{147, "Sunnyotter", Common, 4, 1},
	{148, "Gustkoala", Common, 2, 1},
	{149, "Petalcrow", Common, 5, 1},
	{150, "Shimmerseal", Common, 1, 1},
	{151, "Sparkchick", Common, 4, 1},
	{152, "Fuzzfly", Common, 2, 1},
	{153, "Dewbeetle", Common, 5, 1},
	{154, "Glitterguppy", Common, 1, 1},
	{155, "Chirpfinch", Common, 4, 1},
	{156, "Toasturtle", Common, 2, 1},
	{157, "Pillowcub", Common, 5, 1},
	{158, "Leafrat", Common, 1, 1},
	{159, "Shiftsnake", Common, 4, 1},
	{160, "Puddlepig", Common, 2, 1},
	{161, "Coldbird", Common, 5, 1},
	{162, "Sunmoth", Common, 1, 1},
	{163, "Snugglepig", Common, 4, 1},
	{164, "Puddleclaw", Common, 2, 1},
	{165, "Berrybear", Common, 5, 1},
	{166, "Murmurfin", Common, 1, 1},
	{167, "Sproutmouse", Common, 4, 1},
	{168, "Softspider", Common, 2, 1},
	{169, "Petalpup", Common, 5, 1},
	{170, "Thawhare", Common, 1, 1},
	{171, "Dewdragonfly", Common, 4, 1},
	{172, "Galaxpup", Common, 2, 1},
	{173, "Drizzledove", Common, 5, 1},
	{174, "Twigrobin", Common, 1, 1},
	{175, "Flitterfrog", Common, 4, 1},
	{176, "Marshmink", Common, 2, 1},
	{177, "Pebblepup", Common, 5, 1},
	{178, "Tintaduck", Common, 1, 1},
	{179, "Glowhare", Common, 4, 1},
	{180, "Stargrass", Common, 2, 1},
	{181, "Gloamturtle", Common, 5, 1},
	{182, "Flickerfox", Common, 1, 1},
	{183, "Lullabear", Common, 4, 1},
	{184, "Sablechick", Common, 2, 1},
	{185, "Crispig", Common, 5, 1},
	{186, "Wispwren", Common, 1, 1},
	{187, "Murmurmink", Common, 4, 1},
	{188, "Velvetowl", Common, 2, 1},
	{189, "Dreamrat", Common, 5, 1},
	{190, "Cloudkit", Common, 1, 1},
	{191, "Pebblepup", Common, 4, 1},
}
