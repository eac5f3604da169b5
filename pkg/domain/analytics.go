package domain

import "time"

// Analytics is the dashboard summary derived from a snapshot.
type Analytics struct {
	TotalPatients       int                      `json:"total_patients"`
	TotalBeds           int                      `json:"total_beds"`
	OccupiedBeds        int                      `json:"occupied_beds"`
	OccupancyRate       float64                  `json:"occupancy_rate"`
	PatientsByCondition map[PatientCondition]int `json:"patients_by_condition"`
	AppointmentsToday   int                      `json:"appointments_today"`
	PendingOrders       int                      `json:"pending_orders"`
	CompletedOrders     int                      `json:"completed_orders"`
	ActiveStaff         int                      `json:"active_staff"`
	TotalRevenue        float64                  `json:"total_revenue"`
	PendingBills        int                      `json:"pending_bills"`
	UnreadAlerts        int                      `json:"unread_alerts"`
}

// ComputeAnalytics projects a snapshot into dashboard analytics. It has no
// side effects; today selects which appointments count as today's.
func ComputeAnalytics(s Snapshot, today time.Time) Analytics {
	a := Analytics{
		TotalBeds:           len(s.Beds),
		PatientsByCondition: make(map[PatientCondition]int, len(PatientConditions)),
	}
	for _, c := range PatientConditions {
		a.PatientsByCondition[c] = 0
	}
	for _, p := range s.Patients {
		if p.Status != PatientActive {
			continue
		}
		a.TotalPatients++
		a.PatientsByCondition[p.Condition]++
	}
	for _, b := range s.Beds {
		if b.Status == BedOccupied {
			a.OccupiedBeds++
		}
	}
	if a.TotalBeds > 0 {
		a.OccupancyRate = float64(a.OccupiedBeds) / float64(a.TotalBeds) * 100
	}
	date := today.Format(DateLayout)
	for _, apt := range s.Appointments {
		if apt.Date == date {
			a.AppointmentsToday++
		}
	}
	for _, o := range s.Orders {
		switch o.Status {
		case OrderPending:
			a.PendingOrders++
		case OrderCompleted:
			a.CompletedOrders++
		}
	}
	for _, st := range s.Staff {
		if st.Status == StaffActive {
			a.ActiveStaff++
		}
	}
	for _, b := range s.Bills {
		a.TotalRevenue += b.Amount
		if b.Status == BillPending {
			a.PendingBills++
		}
	}
	for _, al := range s.Alerts {
		if !al.Read {
			a.UnreadAlerts++
		}
	}
	return a
}
