package model

import (
	"fmt"
	"strings"
)

// VehicleModel is the categorical make/model of an electric vehicle.
type VehicleModel int

const (
	ModelUnknown VehicleModel = iota
	ModelAudiA3ETron
	ModelBMWI3
	ModelBMW225XE
	ModelBMW330E
	ModelBMW530E
	ModelBMWX540E
	ModelCitroenCZero
	ModelJaguarIPace
	ModelKiaNiroPHEV
	ModelHyundaiIoniqElectric
	ModelHyundaiIoniqPlugin
	ModelMercedesBenzC350E
	ModelMercedesBenzE350E
	ModelMiniCountrymanCooperSE
	ModelMitsubishiOutlanderPHEV
	ModelNissanENV200
	ModelNissanLeaf
	ModelPorschePanameraEHybrid
	ModelRenaultZoe
	ModelSmartEQForfour
	ModelSmartEQFortwo
	ModelTeslaModelX
	ModelTeslaModelS
	ModelToyotaPriusPlugin
	ModelVolkswagenGolfGTE
	ModelVolkswagenPassatGTE
	ModelVolvoXC60TwinEngine
	ModelVolvoXC90TwinEngine
	ModelVolvoV90TwinEngine
)

var vehicleModelNames = [...]string{
	ModelUnknown:                 "UNKNOWN",
	ModelAudiA3ETron:             "AUDI_A3_E_TRON",
	ModelBMWI3:                   "BMW_I3",
	ModelBMW225XE:                "BMW_225XE",
	ModelBMW330E:                 "BMW_330E",
	ModelBMW530E:                 "BMW_530E",
	ModelBMWX540E:                "BMW_X5_40E",
	ModelCitroenCZero:            "CITROEN_C_ZERO",
	ModelJaguarIPace:             "JAGUAR_I_PACE",
	ModelKiaNiroPHEV:             "KIA_NIRO_PHEV",
	ModelHyundaiIoniqElectric:    "HYUNDAI_IONIQ_ELECTRIC",
	ModelHyundaiIoniqPlugin:      "HYUNDAI_IONIQ_PLUGIN",
	ModelMercedesBenzC350E:       "MERCEDES_BENZ_C350E",
	ModelMercedesBenzE350E:       "MERCEDES_BENZ_E350E",
	ModelMiniCountrymanCooperSE:  "MINI_COUNTRYMAN_COOPER_SE",
	ModelMitsubishiOutlanderPHEV: "MITSUBISHI_OUTLANDER_PHEV",
	ModelNissanENV200:            "NISSAN_E_NV200",
	ModelNissanLeaf:              "NISSAN_LEAF",
	ModelPorschePanameraEHybrid:  "PORSCHE_PANAMERA_EHYBRID",
	ModelRenaultZoe:              "RENAULT_ZOE",
	ModelSmartEQForfour:          "SMART_EQ_FORFOUR",
	ModelSmartEQFortwo:           "SMART_EQ_FORTWO",
	ModelTeslaModelX:             "TESLA_MODEL_X",
	ModelTeslaModelS:             "TESLA_MODEL_S",
	ModelToyotaPriusPlugin:       "TOYOTA_PRIUS_PLUGIN",
	ModelVolkswagenGolfGTE:       "VOLKSWAGEN_GOLF_GTE",
	ModelVolkswagenPassatGTE:     "VOLKSWAGEN_PASSAT_GTE",
	ModelVolvoXC60TwinEngine:     "VOLVO_XC60_TWIN_ENGINE",
	ModelVolvoXC90TwinEngine:     "VOLVO_XC90_TWIN_ENGINE",
	ModelVolvoV90TwinEngine:      "VOLVO_V90_TWIN_ENGINE",
}

// AllVehicleModels lists every known model, UNKNOWN included.
var AllVehicleModels = func() []VehicleModel {
	models := make([]VehicleModel, len(vehicleModelNames))
	for i := range vehicleModelNames {
		models[i] = VehicleModel(i)
	}
	return models
}()

func (m VehicleModel) String() string {
	if int(m) < 0 || int(m) >= len(vehicleModelNames) {
		return fmt.Sprintf("VehicleModel(%d)", int(m))
	}
	return vehicleModelNames[m]
}

// ParseVehicleModel resolves a model name. Unknown names are an error rather
// than silently mapping to UNKNOWN.
func ParseVehicleModel(text string) (VehicleModel, error) {
	name := strings.ToUpper(strings.TrimSpace(text))
	for i, n := range vehicleModelNames {
		if n == name {
			return VehicleModel(i), nil
		}
	}
	return ModelUnknown, fmt.Errorf("incorrect model name %q", text)
}
