package i18n

var en = map[string]string{
	"sales_tracker_pro":           "Sales Tracker Pro",
	"login":                       "Login",
	"login_subtitle":              "Sign in to your account",
	"logout":                      "Logout",
	"username":                    "Username",
	"password":                    "Password",
	"confirm_password":            "Confirm Password",
	"new_password":                "New Password (leave blank to keep current)",
	"invalid_credentials":         "Invalid username or password",
	"dashboard":                   "Dashboard",
	"dashboard_overview":          "Here is an overview of your sales team's activity.",
	"welcome_back":                "Welcome back",
	"add_visit":                   "Add Visit",
	"admin_panel":                 "Admin Panel",
	"user_management":             "User Management",
	"add_user":                    "Add User",
	"edit_user":                   "Edit User",
	"edit":                        "Edit",
	"delete":                      "Delete",
	"cancel":                      "Cancel",
	"save_changes":                "Save Changes",
	"submit":                      "Submit",
	"actions":                     "Actions",
	"name":                        "Name",
	"role":                        "Role",
	"user_role":                   "User Role",
	"admin":                       "Admin",
	"rep":                         "Sales Rep",
	"passwords_do_not_match":      "Passwords do not match",
	"cannot_delete_yourself":      "You cannot delete your own account.",
	"confirm_delete_user":         "Are you sure you want to delete {user}? All their visits will also be deleted.",
	"new_visit_report":            "New Visit Report",
	"visit_date":                  "Visit Date",
	"client_type":                 "Client Type",
	"new":                         "New",
	"old":                         "Old",
	"client_name":                 "Client Name",
	"client_name_placeholder_old": "Start typing to search clients",
	"employee_name":               "Employee Name",
	"employee_phone":              "Employee Phone",
	"company_email":               "Company Email",
	"client_location":             "Client Location",
	"fetching_location":           "Fetching location...",
	"location_error":              "Could not get location",
	"location_success":            "Location captured",
	"location_unsupported":        "Geolocation is not supported",
	"location_denied":             "Location permission was denied",
	"location_unavailable":        "Location is unavailable",
	"location_timeout":            "Location request timed out",
	"purpose_of_visit":            "Purpose of Visit",
	"notes":                       "Notes",
	"visit_added_successfully":    "Visit added successfully!",
	"invalid_visit":               "Please fill in the client, employee, date and at least one purpose",
	"filter_by_rep":               "Filter by Rep",
	"all_reps":                    "All Reps",
	"start_date":                  "Start Date",
	"end_date":                    "End Date",
	"total_visits":                "Total Visits",
	"new_clients":                 "New Clients",
	"rep_performance_comparison":  "Rep Performance Comparison",
	"visit_purpose_distribution":  "Visit Purpose Distribution",
	"client_types_by_rep":         "Client Types by Rep",
	"visits_data":                 "Visits Data",
	"search_placeholder":          "Search by client, rep, employee or notes...",
	"rep_name":                    "Rep Name",
	"open_account":                "Open Account",
	"follow_papers":               "Follow Up Papers",
	"follow_payment":              "Follow Up Payment",
	"follow_quotations":           "Follow Up Quotations",
	"delivery":                    "Delivery",
	"renew_deal":                  "Renew Deal",
	"review_invoice":              "Review Invoice",
	"follow_up":                   "Follow Up",
	"username_taken":              "This username is already in use",
	"user_not_found":              "User not found",
	"session_expired":             "Your session has ended, please log in again",
	"forbidden":                   "You do not have access to this page",
}

var ar = map[string]string{
	"sales_tracker_pro":           "متتبع المبيعات برو",
	"login":                       "تسجيل الدخول",
	"login_subtitle":              "سجل الدخول إلى حسابك",
	"logout":                      "تسجيل الخروج",
	"username":                    "اسم المستخدم",
	"password":                    "كلمة المرور",
	"confirm_password":            "تأكيد كلمة المرور",
	"new_password":                "كلمة مرور جديدة (اتركها فارغة للإبقاء على الحالية)",
	"invalid_credentials":         "اسم المستخدم أو كلمة المرور غير صحيحة",
	"dashboard":                   "لوحة التحكم",
	"dashboard_overview":          "نظرة عامة على نشاط فريق المبيعات.",
	"welcome_back":                "مرحباً بعودتك",
	"add_visit":                   "إضافة زيارة",
	"admin_panel":                 "لوحة المسؤول",
	"user_management":             "إدارة المستخدمين",
	"add_user":                    "إضافة مستخدم",
	"edit_user":                   "تعديل المستخدم",
	"edit":                        "تعديل",
	"delete":                      "حذف",
	"cancel":                      "إلغاء",
	"save_changes":                "حفظ التغييرات",
	"submit":                      "إرسال",
	"actions":                     "الإجراءات",
	"name":                        "الاسم",
	"role":                        "الدور",
	"user_role":                   "دور المستخدم",
	"admin":                       "مسؤول",
	"rep":                         "مندوب مبيعات",
	"passwords_do_not_match":      "كلمتا المرور غير متطابقتين",
	"cannot_delete_yourself":      "لا يمكنك حذف حسابك الخاص.",
	"confirm_delete_user":         "هل أنت متأكد من حذف {user}؟ سيتم حذف جميع زياراته أيضاً.",
	"new_visit_report":            "تقرير زيارة جديدة",
	"visit_date":                  "تاريخ الزيارة",
	"client_type":                 "نوع العميل",
	"new":                         "جديد",
	"old":                         "قديم",
	"client_name":                 "اسم العميل",
	"client_name_placeholder_old": "ابدأ الكتابة للبحث عن العملاء",
	"employee_name":               "اسم الموظف",
	"employee_phone":              "هاتف الموظف",
	"company_email":               "بريد الشركة",
	"client_location":             "موقع العميل",
	"fetching_location":           "جاري تحديد الموقع...",
	"location_error":              "تعذر الحصول على الموقع",
	"location_success":            "تم تحديد الموقع",
	"location_unsupported":        "تحديد الموقع غير مدعوم",
	"location_denied":             "تم رفض إذن الوصول إلى الموقع",
	"location_unavailable":        "الموقع غير متاح",
	"location_timeout":            "انتهت مهلة طلب الموقع",
	"purpose_of_visit":            "الغرض من الزيارة",
	"notes":                       "ملاحظات",
	"visit_added_successfully":    "تمت إضافة الزيارة بنجاح!",
	"invalid_visit":               "يرجى إدخال العميل والموظف والتاريخ وغرض واحد على الأقل",
	"filter_by_rep":               "تصفية حسب المندوب",
	"all_reps":                    "جميع المندوبين",
	"start_date":                  "تاريخ البداية",
	"end_date":                    "تاريخ النهاية",
	"total_visits":                "إجمالي الزيارات",
	"new_clients":                 "العملاء الجدد",
	"rep_performance_comparison":  "مقارنة أداء المندوبين",
	"visit_purpose_distribution":  "توزيع أغراض الزيارات",
	"client_types_by_rep":         "أنواع العملاء حسب المندوب",
	"visits_data":                 "بيانات الزيارات",
	"search_placeholder":          "ابحث بالعميل أو المندوب أو الموظف أو الملاحظات...",
	"rep_name":                    "اسم المندوب",
	"open_account":                "فتح حساب",
	"follow_papers":               "متابعة أوراق",
	"follow_payment":              "متابعة دفعة",
	"follow_quotations":           "متابعة عروض أسعار",
	"delivery":                    "توصيل",
	"renew_deal":                  "تجديد صفقة",
	"review_invoice":              "مراجعة فاتورة",
	"follow_up":                   "متابعة",
	"username_taken":              "اسم المستخدم مستخدم بالفعل",
	"user_not_found":              "المستخدم غير موجود",
	"session_expired":             "انتهت جلستك، يرجى تسجيل الدخول مرة أخرى",
	"forbidden":                   "ليس لديك صلاحية الوصول إلى هذه الصفحة",
}
